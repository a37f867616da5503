// Package mqtt publishes HomeGuard state to an MQTT broker.
//
// This package manages:
//   - Connection to the broker with auto-reconnect
//   - Retained publishing of the status board snapshot
//   - Device state events after committed commands
//   - Last Will and Testament (LWT) for offline detection
//
// # Topics
//
//	homeguard/system/status          retained online/offline presence (LWT)
//	homeguard/status                 retained status board snapshot
//	homeguard/state/{owner}/{id}     retained device state
//
// Publishing is best-effort. Callers log failures and carry on; the store
// remains the source of truth.
//
// # Usage
//
//	client, err := mqtt.Connect(cfg.MQTT)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	err = client.PublishJSON(mqtt.Topics{}.Status(), board.Snapshot(), true)
package mqtt
