package monitor

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/nerrad567/homeguard-core/internal/status"
)

type fixedTemperature struct {
	value int
	err   error
}

func (f fixedTemperature) Temperature(context.Context) (int, error) {
	return f.value, f.err
}

type recordingPublisher struct {
	mu        sync.Mutex
	snapshots []map[string]string
	err       error
}

func (p *recordingPublisher) PublishStatus(snapshot map[string]string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.snapshots = append(p.snapshots, snapshot)
	return p.err
}

func (p *recordingPublisher) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.snapshots)
}

type recordingRecorder struct {
	mu       sync.Mutex
	readings []Reading
}

func (r *recordingRecorder) RecordReading(reading Reading) {
	r.mu.Lock()
	r.readings = append(r.readings, reading)
	r.mu.Unlock()
}

func waitForTicks(t *testing.T, m *Monitor, n uint64) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for m.Ticks() < n {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %d ticks, got %d", n, m.Ticks())
		}
		time.Sleep(time.Millisecond)
	}
}

func TestTimeWindowPolicy(t *testing.T) {
	p := TimeWindowPolicy{Window: 5 * time.Second}

	tests := []struct {
		name   string
		millis int64
		want   string
	}{
		{"start of period", 0, SecurityAlert},
		{"inside alert window", 4999, SecurityAlert},
		{"start of normal window", 5000, SecurityNormal},
		{"end of normal window", 9999, SecurityNormal},
		{"next period", 10000, SecurityAlert},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := p.Security(time.UnixMilli(tt.millis))
			if got != tt.want {
				t.Errorf("Security(%d) = %q, want %q", tt.millis, got, tt.want)
			}
		})
	}
}

func TestTimeWindowPolicy_ZeroWindow(t *testing.T) {
	if got := (TimeWindowPolicy{}).Security(time.Now()); got != SecurityNormal {
		t.Errorf("Security() = %q, want %q", got, SecurityNormal)
	}
}

func TestRandomTemperature_Range(t *testing.T) {
	src := RandomTemperature{Min: 20, Max: 24}
	seen := make(map[int]bool)
	for range 2000 {
		v, err := src.Temperature(context.Background())
		if err != nil {
			t.Fatalf("Temperature() error = %v", err)
		}
		if v < 20 || v > 24 {
			t.Fatalf("Temperature() = %d, want 20..24", v)
		}
		seen[v] = true
	}
	if len(seen) != 5 {
		t.Errorf("saw %d distinct values, want 5", len(seen))
	}
}

func TestRandomTemperature_EmptyRange(t *testing.T) {
	if _, err := (RandomTemperature{Min: 5, Max: 4}).Temperature(context.Background()); err == nil {
		t.Error("Temperature() with empty range should fail")
	}
}

func TestFormatTemperature(t *testing.T) {
	if got := FormatTemperature(22); got != "22°C" {
		t.Errorf("FormatTemperature(22) = %q", got)
	}
}

func TestMonitor_TickWritesBoard(t *testing.T) {
	board := status.NewBoard()
	now := time.Date(2026, 10, 18, 9, 30, 0, 0, time.FixedZone("BST", 3600))
	rec := &recordingRecorder{}
	pub := &recordingPublisher{}

	m := New(Config{
		Board:       board,
		Security:    SecurityFunc(func(time.Time) string { return SecurityAlert }),
		Temperature: fixedTemperature{value: 23},
		Clock:       func() time.Time { return now },
		Publisher:   pub,
		Recorder:    rec,
	})

	m.tick(context.Background())

	if got := board.Get(status.KeySecurity, ""); got != SecurityAlert {
		t.Errorf("security_status = %q", got)
	}
	if got := board.Get(status.KeyTemperature, ""); got != "23°C" {
		t.Errorf("temperature = %q", got)
	}
	if got := board.Get(status.KeyLastCheck, ""); got != "2026-10-18T08:30:00Z" {
		t.Errorf("last_check = %q, want UTC RFC3339", got)
	}
	if m.Ticks() != 1 {
		t.Errorf("Ticks() = %d, want 1", m.Ticks())
	}
	if pub.count() != 1 {
		t.Fatalf("published %d snapshots, want 1", pub.count())
	}
	if pub.snapshots[0][status.KeyTemperature] != "23°C" {
		t.Errorf("published snapshot = %v", pub.snapshots[0])
	}
	if len(rec.readings) != 1 || rec.readings[0].Temperature != 23 {
		t.Errorf("recorded readings = %+v", rec.readings)
	}
}

func TestMonitor_TickFailureIsSwallowed(t *testing.T) {
	board := status.NewBoard()
	board.Put(status.KeyTemperature, "21°C")
	pub := &recordingPublisher{}

	m := New(Config{
		Board:       board,
		Temperature: fixedTemperature{err: errors.New("sensor offline")},
		Publisher:   pub,
	})
	m.tick(context.Background())

	if got := board.Get(status.KeyTemperature, ""); got != "21°C" {
		t.Errorf("temperature = %q, want previous value kept", got)
	}
	if m.Ticks() != 0 {
		t.Errorf("Ticks() = %d, want 0", m.Ticks())
	}
	if pub.count() != 0 {
		t.Error("failed tick should not publish")
	}
}

func TestMonitor_PublisherErrorDoesNotStopTick(t *testing.T) {
	board := status.NewBoard()
	rec := &recordingRecorder{}
	m := New(Config{
		Board:       board,
		Temperature: fixedTemperature{value: 20},
		Publisher:   &recordingPublisher{err: errors.New("broker down")},
		Recorder:    rec,
	})
	m.tick(context.Background())

	if len(rec.readings) != 1 {
		t.Errorf("recorder called %d times, want 1", len(rec.readings))
	}
}

func TestMonitor_Lifecycle(t *testing.T) {
	m := New(Config{Interval: time.Hour, Temperature: fixedTemperature{value: 22}})

	if m.State() != StateIdle {
		t.Fatalf("initial state = %v", m.State())
	}
	if err := m.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if err := m.Start(context.Background()); !errors.Is(err, ErrAlreadyRunning) {
		t.Errorf("second Start() error = %v, want ErrAlreadyRunning", err)
	}

	// First tick runs immediately.
	waitForTicks(t, m, 1)

	m.Stop()
	if m.State() != StateStopped {
		t.Errorf("state after Stop = %v", m.State())
	}
	if err := m.Start(context.Background()); !errors.Is(err, ErrStopped) {
		t.Errorf("Start() after Stop error = %v, want ErrStopped", err)
	}

	// Stop is idempotent.
	m.Stop()
}

func TestMonitor_StopBeforeStart(t *testing.T) {
	m := New(Config{})
	m.Stop()
	if err := m.Start(context.Background()); !errors.Is(err, ErrStopped) {
		t.Errorf("Start() error = %v, want ErrStopped", err)
	}
}

func TestMonitor_NoWritesAfterStop(t *testing.T) {
	board := status.NewBoard()
	m := New(Config{
		Board:       board,
		Interval:    time.Millisecond,
		Temperature: fixedTemperature{value: 24},
	})

	if err := m.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	waitForTicks(t, m, 3)
	m.Stop()

	ticks := m.Ticks()
	before := board.Get(status.KeyLastCheck, "")
	board.Put(status.KeyLastCheck, "sentinel")

	time.Sleep(20 * time.Millisecond)

	if m.Ticks() != ticks {
		t.Errorf("ticks advanced after Stop: %d -> %d", ticks, m.Ticks())
	}
	if got := board.Get(status.KeyLastCheck, ""); got != "sentinel" {
		t.Errorf("last_check overwritten after Stop (was %q, now %q)", before, got)
	}
}

func TestMonitor_ContextCancelEndsLoop(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	m := New(Config{Interval: time.Millisecond, Temperature: fixedTemperature{value: 21}})

	if err := m.Start(ctx); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	waitForTicks(t, m, 1)
	cancel()

	deadline := time.Now().Add(2 * time.Second)
	for m.State() != StateStopped {
		if time.Now().After(deadline) {
			t.Fatal("loop did not exit after context cancel")
		}
		time.Sleep(time.Millisecond)
	}
	m.Stop()
}

func TestMonitor_SecurityOnlyTwoStates(t *testing.T) {
	board := status.NewBoard()
	var clockMu sync.Mutex
	now := time.UnixMilli(0)
	m := New(Config{
		Board:       board,
		Security:    TimeWindowPolicy{Window: 5 * time.Second},
		Temperature: fixedTemperature{value: 20},
		Clock: func() time.Time {
			clockMu.Lock()
			defer clockMu.Unlock()
			now = now.Add(1700 * time.Millisecond)
			return now
		},
	})

	seen := make(map[string]bool)
	for range 50 {
		m.tick(context.Background())
		seen[board.Get(status.KeySecurity, "")] = true
	}
	for v := range seen {
		if v != SecurityAlert && v != SecurityNormal {
			t.Errorf("unexpected security value %q", v)
		}
	}
	if len(seen) != 2 {
		t.Errorf("saw %d security values, want both", len(seen))
	}
}

func TestState_String(t *testing.T) {
	for s, want := range map[State]string{StateIdle: "idle", StateRunning: "running", StateStopped: "stopped"} {
		if got := s.String(); !strings.EqualFold(got, want) {
			t.Errorf("%d.String() = %q, want %q", s, got, want)
		}
	}
}
