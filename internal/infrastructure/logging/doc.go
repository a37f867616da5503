// Package logging provides structured logging for HomeGuard.
//
// It wraps log/slog so every entry carries the service name and build
// version, and so components can derive tagged child loggers:
//
//	logger := logging.New(cfg.Logging, version)
//	monLog := logger.Component("monitor")
//	monLog.Info("tick", "temperature", "22°C")
//
// Configuration (config.yaml):
//
//	logging:
//	  level: "info"      # debug, info, warn, error
//	  format: "json"     # json, text
//	  output: "stdout"   # stdout, stderr
//
// Never log passwords or password hashes. The one exception is the
// generated first-boot admin password, which is logged once at warn level.
package logging
