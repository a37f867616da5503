package main

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/nerrad567/homeguard-core/internal/api"
	"github.com/nerrad567/homeguard-core/internal/device"
	"github.com/nerrad567/homeguard-core/internal/monitor"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test-config.yaml")
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}
	return path
}

// TestRun_InvalidConfig verifies run fails with invalid config path.
func TestRun_InvalidConfig(t *testing.T) {
	t.Setenv("HOMEGUARD_CONFIG", "/nonexistent/path/config.yaml")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := run(ctx); err == nil {
		t.Fatal("run() should fail with invalid config path")
	}
}

// TestRun_MissingDatabasePath verifies run fails validation with an empty path.
func TestRun_MissingDatabasePath(t *testing.T) {
	t.Setenv("HOMEGUARD_CONFIG", writeConfig(t, `
site:
  id: test-site
database:
  path: ""
logging:
  level: error
  format: text
`))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := run(ctx); err == nil {
		t.Fatal("run() should fail with empty database path")
	}
}

// TestRun_StartupAndShutdown runs the whole stack without MQTT or
// InfluxDB and stops it by cancelling the context.
func TestRun_StartupAndShutdown(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")
	t.Setenv("HOMEGUARD_CONFIG", writeConfig(t, `
site:
  id: test-site
database:
  path: "`+dbPath+`"
  wal_mode: true
  busy_timeout: 5
mqtt:
  enabled: false
influxdb:
  enabled: false
api:
  enabled: true
  host: "127.0.0.1"
  port: 18093
monitor:
  interval_seconds: 1
logging:
  level: error
  format: text
`))

	ctx, cancel := context.WithTimeout(context.Background(), 1500*time.Millisecond)
	defer cancel()

	if err := run(ctx); err != nil {
		t.Fatalf("run() error = %v", err)
	}
	if _, err := os.Stat(dbPath); err != nil {
		t.Errorf("database file not created: %v", err)
	}
}

// TestGetConfigPath_Default verifies default config path.
func TestGetConfigPath_Default(t *testing.T) {
	t.Setenv("HOMEGUARD_CONFIG", "")

	if path := getConfigPath(); path != defaultConfigPath {
		t.Errorf("getConfigPath() = %q, want %q", path, defaultConfigPath)
	}
}

// TestGetConfigPath_EnvOverride verifies environment variable override.
func TestGetConfigPath_EnvOverride(t *testing.T) {
	expected := "/custom/path/config.yaml"
	t.Setenv("HOMEGUARD_CONFIG", expected)

	if path := getConfigPath(); path != expected {
		t.Errorf("getConfigPath() = %q, want %q", path, expected)
	}
}

type stubCheck struct{ err error }

func (s stubCheck) HealthCheck(context.Context) error { return s.err }

func TestHealthCheck(t *testing.T) {
	ok := map[string]api.HealthChecker{"database": stubCheck{}}
	if err := healthCheck(context.Background(), ok); err != nil {
		t.Errorf("healthCheck() error = %v", err)
	}

	down := errors.New("down")
	failing := map[string]api.HealthChecker{
		"database": stubCheck{},
		"mqtt":     stubCheck{err: down},
	}
	err := healthCheck(context.Background(), failing)
	if !errors.Is(err, down) {
		t.Fatalf("healthCheck() error = %v, want wrapped %v", err, down)
	}
	if err.Error() != "mqtt: down" {
		t.Errorf("healthCheck() error = %q", err)
	}
}

func TestDeviceState(t *testing.T) {
	now := time.Now()
	tests := []struct {
		status string
		on     bool
	}{
		{device.StatusOn, true},
		{device.StatusOff, false},
		{device.StatusOpen, true},
		{device.StatusClosed, false},
	}
	for _, tt := range tests {
		rec := device.Record{ID: 7, OwnerID: "alice@example.com", Kind: device.KindLight, Status: tt.status, SettingValue: 40, LastUpdated: now}
		got := deviceState(rec)
		if got.On != tt.on || got.DeviceID != 7 || got.Setting != 40 || !got.Time.Equal(now) {
			t.Errorf("deviceState(%s) = %+v", tt.status, got)
		}
	}
}

func TestSecondsDuration(t *testing.T) {
	if got := secondsDuration(5); got != 5*time.Second {
		t.Errorf("secondsDuration(5) = %v", got)
	}
}

var _ monitor.Publisher = (*mqttPublisher)(nil)
var _ monitor.Recorder = (*influxRecorder)(nil)
