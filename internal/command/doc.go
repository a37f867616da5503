// Package command executes user commands against devices.
//
// An Executor resolves the device, checks the actor may operate it,
// validates the command, applies the transition to a private copy and
// persists it. Only once the store has accepted the new state does the
// cached copy change. When the store fails the caller gets a
// *PersistenceError and the cache entry is dropped, so the next read
// comes from the store.
//
// Commands for the same device are serialised by a keyed lock; commands
// for different devices run concurrently. The executor never coordinates
// with the monitor.
//
// Every command, including rejected and failed ones, is written to the
// audit trail. Committed transitions are also handed to the optional
// StatePublisher and StateRecorder.
package command
