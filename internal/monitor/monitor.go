package monitor

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/nerrad567/homeguard-core/internal/status"
)

// DefaultInterval is the tick period when Config.Interval is zero.
const DefaultInterval = 5 * time.Second

var (
	// ErrAlreadyRunning is returned by Start on a running monitor.
	ErrAlreadyRunning = errors.New("monitor: already running")

	// ErrStopped is returned by Start once the monitor has stopped.
	ErrStopped = errors.New("monitor: stopped")
)

// State is the lifecycle position of a Monitor.
type State int

const (
	StateIdle State = iota
	StateRunning
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	default:
		return "stopped"
	}
}

// Logger defines the logging interface used by the Monitor.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// Reading is the result of one tick.
type Reading struct {
	Security    string
	Temperature int
	CheckedAt   time.Time
}

// Publisher receives the board snapshot after every tick (e.g. MQTT).
type Publisher interface {
	PublishStatus(snapshot map[string]string) error
}

// Recorder stores readings as time series (e.g. InfluxDB).
type Recorder interface {
	RecordReading(r Reading)
}

// Config holds the Monitor collaborators. Board is required.
type Config struct {
	Board       *status.Board
	Interval    time.Duration
	Security    SecurityPolicy    // default TimeWindowPolicy{5s}
	Temperature TemperatureSource // default RandomTemperature{20, 24}
	Publisher   Publisher         // optional
	Recorder    Recorder          // optional
	Clock       func() time.Time  // default time.Now
}

// Monitor periodically refreshes the status board.
type Monitor struct {
	board       *status.Board
	interval    time.Duration
	security    SecurityPolicy
	temperature TemperatureSource
	publisher   Publisher
	recorder    Recorder
	clock       func() time.Time

	mu    sync.Mutex
	state State

	done     chan struct{}
	wg       sync.WaitGroup
	stopOnce sync.Once

	ticks atomic.Uint64

	logger   Logger
	loggerMu sync.RWMutex
}

// New creates an idle Monitor.
func New(cfg Config) *Monitor {
	m := &Monitor{
		board:       cfg.Board,
		interval:    cfg.Interval,
		security:    cfg.Security,
		temperature: cfg.Temperature,
		publisher:   cfg.Publisher,
		recorder:    cfg.Recorder,
		clock:       cfg.Clock,
		done:        make(chan struct{}),
		logger:      noopLogger{},
	}
	if m.board == nil {
		m.board = status.NewBoard()
	}
	if m.interval <= 0 {
		m.interval = DefaultInterval
	}
	if m.security == nil {
		m.security = TimeWindowPolicy{Window: 5 * time.Second}
	}
	if m.temperature == nil {
		m.temperature = RandomTemperature{Min: 20, Max: 24}
	}
	if m.clock == nil {
		m.clock = time.Now
	}
	return m
}

// SetLogger sets the logger for the monitor.
func (m *Monitor) SetLogger(logger Logger) {
	m.loggerMu.Lock()
	m.logger = logger
	m.loggerMu.Unlock()
}

func (m *Monitor) log() Logger {
	m.loggerMu.RLock()
	defer m.loggerMu.RUnlock()
	return m.logger
}

// Board returns the board the monitor writes to.
func (m *Monitor) Board() *status.Board {
	return m.board
}

// State returns the current lifecycle state.
func (m *Monitor) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Ticks returns how many ticks have completed.
func (m *Monitor) Ticks() uint64 {
	return m.ticks.Load()
}

// Start runs the first tick immediately, then one per interval, until Stop
// is called or ctx is cancelled.
func (m *Monitor) Start(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	switch m.state {
	case StateRunning:
		return ErrAlreadyRunning
	case StateStopped:
		return ErrStopped
	}

	m.state = StateRunning
	m.wg.Add(1)
	go m.loop(ctx)

	m.log().Info("monitor started", "interval", m.interval.String())
	return nil
}

// Stop ends the loop and waits for it to exit. Safe to call more than once
// and before Start.
func (m *Monitor) Stop() {
	m.stopOnce.Do(func() {
		close(m.done)
		m.wg.Wait()

		m.mu.Lock()
		m.state = StateStopped
		m.mu.Unlock()

		m.log().Info("monitor stopped", "ticks", m.ticks.Load())
	})
}

func (m *Monitor) loop(ctx context.Context) {
	defer m.wg.Done()
	defer func() {
		m.mu.Lock()
		m.state = StateStopped
		m.mu.Unlock()
	}()

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	m.tick(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-m.done:
			return
		case <-ticker.C:
			m.tick(ctx)
		}
	}
}

// tick takes one reading and writes it to the board. Failures are logged
// and the tick is skipped; the loop keeps running.
func (m *Monitor) tick(ctx context.Context) {
	r, err := m.read(ctx)
	if err != nil {
		m.log().Warn("monitor tick failed", "error", err)
		return
	}

	m.board.PutAll(map[string]string{
		status.KeySecurity:    r.Security,
		status.KeyTemperature: FormatTemperature(r.Temperature),
		status.KeyLastCheck:   r.CheckedAt.Format(time.RFC3339),
	})
	m.ticks.Add(1)

	m.log().Debug("monitor tick", "security", r.Security, "temperature", r.Temperature)

	if m.publisher != nil {
		if err := m.publisher.PublishStatus(m.board.Snapshot()); err != nil {
			m.log().Warn("publishing status failed", "error", err)
		}
	}
	if m.recorder != nil {
		m.recorder.RecordReading(r)
	}
}

func (m *Monitor) read(ctx context.Context) (Reading, error) {
	now := m.clock().UTC()
	temp, err := m.temperature.Temperature(ctx)
	if err != nil {
		return Reading{}, err
	}
	return Reading{
		Security:    m.security.Security(now),
		Temperature: temp,
		CheckedAt:   now,
	}, nil
}
