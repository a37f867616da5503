// Package device provides the HomeGuard device model and registry.
//
// A device is either a Light (dimmable, ON/OFF) or a Gate (OPEN/CLOSED).
// Both implement the Device interface, whose transition methods are the only
// way to change state:
//
//	l, _ := device.NewLight(owner, "Kitchen", 0, device.StatusOff)
//	l.TurnOn()            // "Kitchen switched ON. Brightness: 50%."
//	l.AdjustSetting(150)  // ErrInvalidArgument, light untouched
//	l.AdjustSetting(0)    // OFF at 0%
//
// Every successful transition stamps LastUpdated after the state fields are
// consistent. The stamp never moves backwards.
//
// # Persistence
//
// Store is the persistence boundary; SQLiteRepository implements it on the
// devices table. Registry wraps a Store with a cache of device snapshots:
//
//	repo := device.NewSQLiteRepository(db.DB)
//	registry := device.NewRegistry(repo)
//	registry.SetLogger(log)
//	if err := registry.RefreshCache(ctx); err != nil {
//	    return err
//	}
//
// Devices are not safe for concurrent mutation. The command package
// serialises transitions per device id.
package device
