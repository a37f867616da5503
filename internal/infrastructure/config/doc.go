// Package config loads HomeGuard Core settings.
//
// Values are resolved in three layers: built-in defaults, the YAML file,
// then HOMEGUARD_* environment variables. Validate reports every problem
// in one error so an operator can fix the file in a single pass.
//
// Secrets (MQTT password, InfluxDB token) belong in the environment, not
// in the file.
//
//	cfg, err := config.Load("configs/config.yaml")
//	if err != nil {
//	    return fmt.Errorf("loading config: %w", err)
//	}
//	interval := cfg.MonitorInterval()
package config
