// HomeGuard Core - smart-home hub
//
// This is the main entry point for the HomeGuard Core application.
// HomeGuard runs a registry of per-user lights and gates, a background
// monitor that keeps the household status board fresh, and a JSON API
// for homeowners and admins.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/nerrad567/homeguard-core/migrations"

	"github.com/nerrad567/homeguard-core/internal/api"
	"github.com/nerrad567/homeguard-core/internal/audit"
	"github.com/nerrad567/homeguard-core/internal/auth"
	"github.com/nerrad567/homeguard-core/internal/command"
	"github.com/nerrad567/homeguard-core/internal/device"
	"github.com/nerrad567/homeguard-core/internal/infrastructure/config"
	"github.com/nerrad567/homeguard-core/internal/infrastructure/database"
	"github.com/nerrad567/homeguard-core/internal/infrastructure/influxdb"
	"github.com/nerrad567/homeguard-core/internal/infrastructure/logging"
	"github.com/nerrad567/homeguard-core/internal/infrastructure/mqtt"
	"github.com/nerrad567/homeguard-core/internal/monitor"
	"github.com/nerrad567/homeguard-core/internal/status"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// Default configuration file path
const defaultConfigPath = "configs/config.yaml"

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run is the application logic, separated from main for testability.
// It returns nil on clean shutdown.
func run(ctx context.Context) error {
	log := logging.Default()
	log.Info("starting HomeGuard Core",
		"version", version,
		"commit", commit,
		"build_date", date,
	)

	configPath := getConfigPath()
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	log.Info("configuration loaded", "path", configPath)

	log = logging.New(cfg.Logging, version)
	log.Info("logger initialised",
		"level", cfg.Logging.Level,
		"format", cfg.Logging.Format,
	)

	db, err := database.Open(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer func() {
		log.Info("closing database")
		if closeErr := db.Close(); closeErr != nil {
			log.Error("error closing database", "error", closeErr)
		}
	}()
	log.Info("database connected", "path", cfg.Database.Path)

	if migrateErr := db.Migrate(ctx); migrateErr != nil {
		return fmt.Errorf("running migrations: %w", migrateErr)
	}
	log.Info("database migrations complete")

	userRepo := auth.NewUserRepository(db.DB)
	if _, seedErr := auth.SeedAdmin(ctx, userRepo, cfg.Seed.AdminEmail, cfg.Seed.AdminName, log.Logger); seedErr != nil {
		return fmt.Errorf("seeding admin: %w", seedErr)
	}

	deviceRegistry := device.NewRegistry(device.NewSQLiteRepository(db.DB))
	deviceRegistry.SetLogger(log.Component("registry"))
	if refreshErr := deviceRegistry.RefreshCache(ctx); refreshErr != nil {
		return fmt.Errorf("loading device registry: %w", refreshErr)
	}
	log.Info("device registry initialised", "devices", deviceRegistry.Stats().Total)

	checks := map[string]api.HealthChecker{"database": db}

	mqttClient, err := connectMQTT(cfg, log)
	if err != nil {
		return err
	}
	if mqttClient != nil {
		defer func() {
			stats := mqttClient.Stats()
			log.Info("disconnecting from MQTT", "published", stats.Published, "failed", stats.Failed)
			if closeErr := mqttClient.Close(); closeErr != nil {
				log.Error("error closing MQTT", "error", closeErr)
			}
		}()
		checks["mqtt"] = mqttClient
	}

	influxClient, err := connectInfluxDB(cfg, log)
	if err != nil {
		return err
	}
	if influxClient != nil {
		defer func() {
			log.Info("closing InfluxDB connection")
			if closeErr := influxClient.Close(); closeErr != nil {
				log.Error("error closing InfluxDB", "error", closeErr)
			}
		}()
		checks["influxdb"] = influxClient
	}

	if err := healthCheck(ctx, checks); err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	log.Info("all health checks passed")

	auditRepo := audit.NewSQLiteRepository(db.DB)
	execOpts := command.Options{
		Devices: deviceRegistry,
		Users:   userRepo,
		Audit:   auditRepo,
		Timeout: cfg.CommandTimeout(),
		Source:  "api",
		Logger:  log.Component("command"),
	}
	if mqttClient != nil {
		execOpts.Publisher = &mqttPublisher{client: mqttClient}
	}
	if influxClient != nil {
		execOpts.Recorder = &influxRecorder{client: influxClient}
	}
	executor := command.NewExecutor(execOpts)
	defer func() {
		log.Info("waiting for queued commands")
		executor.Wait()
	}()

	board := status.NewBoard()
	monCfg := monitor.Config{
		Board:    board,
		Interval: cfg.MonitorInterval(),
		Security: monitor.TimeWindowPolicy{Window: secondsDuration(cfg.Monitor.AlertWindowSeconds)},
		Temperature: monitor.RandomTemperature{
			Min: cfg.Monitor.TemperatureMin,
			Max: cfg.Monitor.TemperatureMax,
		},
	}
	if mqttClient != nil {
		monCfg.Publisher = &mqttPublisher{client: mqttClient}
	}
	if influxClient != nil {
		monCfg.Recorder = &influxRecorder{client: influxClient}
	}
	mon := monitor.New(monCfg)
	mon.SetLogger(log.Component("monitor"))
	if err := mon.Start(ctx); err != nil {
		return fmt.Errorf("starting monitor: %w", err)
	}
	defer func() {
		log.Info("stopping monitor")
		mon.Stop()
	}()

	if cfg.API.Enabled {
		srv, apiErr := api.New(api.Deps{
			Config:   cfg.API,
			Logger:   log.Component("api"),
			Executor: executor,
			Users:    auth.NewService(userRepo),
			Board:    board,
			Registry: deviceRegistry,
			Audit:    auditRepo,
			Monitor:  mon,
			Checks:   checks,
			Version:  version,
		})
		if apiErr != nil {
			return fmt.Errorf("creating API server: %w", apiErr)
		}
		if startErr := srv.Start(ctx); startErr != nil {
			return fmt.Errorf("starting API server: %w", startErr)
		}
		defer func() {
			if closeErr := srv.Close(); closeErr != nil {
				log.Error("error closing API server", "error", closeErr)
			}
		}()
	} else {
		log.Info("API server disabled")
	}

	log.Info("initialisation complete, waiting for shutdown signal")

	<-ctx.Done()

	log.Info("shutdown signal received, cleaning up")

	// Deferred calls run in reverse order:
	// API server, monitor, queued commands, InfluxDB, MQTT, database.

	log.Info("HomeGuard Core stopped")
	return nil
}

// getConfigPath returns the configuration file path.
// Uses HOMEGUARD_CONFIG environment variable if set, otherwise default.
func getConfigPath() string {
	if path := os.Getenv("HOMEGUARD_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}

// connectMQTT returns nil without error when MQTT is disabled.
func connectMQTT(cfg *config.Config, log *logging.Logger) (*mqtt.Client, error) {
	client, err := mqtt.Connect(cfg.MQTT)
	if errors.Is(err, mqtt.ErrDisabled) {
		log.Info("MQTT disabled")
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("connecting to MQTT: %w", err)
	}

	client.SetLogger(log.Component("mqtt"))
	client.SetOnConnect(func() {
		log.Info("MQTT reconnected")
	})
	client.SetOnDisconnect(func(err error) {
		log.Warn("MQTT disconnected", "error", err)
	})

	log.Info("MQTT connected",
		"broker", fmt.Sprintf("%s:%d", cfg.MQTT.Broker.Host, cfg.MQTT.Broker.Port),
		"client_id", cfg.MQTT.Broker.ClientID,
	)
	return client, nil
}

// connectInfluxDB returns nil without error when InfluxDB is disabled.
func connectInfluxDB(cfg *config.Config, log *logging.Logger) (*influxdb.Client, error) {
	client, err := influxdb.Connect(cfg.InfluxDB, cfg.Site.ID)
	if errors.Is(err, influxdb.ErrDisabled) {
		log.Info("InfluxDB disabled")
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("connecting to InfluxDB: %w", err)
	}

	client.SetOnError(func(err error) {
		log.Error("InfluxDB write error", "error", err)
	})
	log.Info("InfluxDB connected",
		"url", cfg.InfluxDB.URL,
		"org", cfg.InfluxDB.Org,
		"bucket", cfg.InfluxDB.Bucket,
	)
	return client, nil
}

// healthCheck returns the first failing check, named.
func healthCheck(ctx context.Context, checks map[string]api.HealthChecker) error {
	for name, c := range checks {
		if err := c.HealthCheck(ctx); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
	}
	return nil
}
