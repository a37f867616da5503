// Package monitor runs the background environmental and security check.
//
// Each tick produces a Reading (security state, temperature, check time),
// writes it to the status board under security_status, temperature and
// last_check, then hands the board snapshot to optional publishers.
//
// Lifecycle:
//
//	Idle --Start--> Running --Stop--> Stopped (terminal)
//
// Start on a running monitor returns ErrAlreadyRunning; Start after Stop
// returns ErrStopped. Stop blocks until the loop goroutine has exited, so
// the board is never written after Stop returns.
//
// The readings are simulated. SecurityPolicy and TemperatureSource are
// interfaces so a sensor integration can replace them.
package monitor
