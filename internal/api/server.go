package api

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/nerrad567/homeguard-core/internal/audit"
	"github.com/nerrad567/homeguard-core/internal/auth"
	"github.com/nerrad567/homeguard-core/internal/command"
	"github.com/nerrad567/homeguard-core/internal/device"
	"github.com/nerrad567/homeguard-core/internal/infrastructure/config"
	"github.com/nerrad567/homeguard-core/internal/infrastructure/logging"
	"github.com/nerrad567/homeguard-core/internal/monitor"
	"github.com/nerrad567/homeguard-core/internal/status"
)

// gracefulShutdownTimeout is the maximum time to wait for in-flight requests
// to complete during shutdown.
const gracefulShutdownTimeout = 10 * time.Second

// auditChanSize bounds the async audit queue for account changes.
// Entries beyond this are dropped.
const auditChanSize = 256

// MonitorInfo is the read-only view of the monitor shown on /status.
type MonitorInfo interface {
	State() monitor.State
	Ticks() uint64
}

// HealthChecker reports whether a collaborator is healthy.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// Deps holds the dependencies required by the API server.
type Deps struct {
	Config   config.APIConfig
	Logger   *logging.Logger
	Executor *command.Executor
	Users    *auth.Service
	Board    *status.Board
	Registry *device.Registry         // optional, for /devices/stats
	Audit    audit.Repository         // optional
	Monitor  MonitorInfo              // optional
	Checks   map[string]HealthChecker // optional, reported by /health
	Version  string
}

// Server is the HomeGuard HTTP API server.
type Server struct {
	cfg      config.APIConfig
	logger   *logging.Logger
	executor *command.Executor
	users    *auth.Service
	board    *status.Board
	registry *device.Registry
	audit    audit.Repository
	monitor  MonitorInfo
	checks   map[string]HealthChecker
	version  string

	server  *http.Server
	handler http.Handler

	auditCh chan *audit.Entry
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// New creates a new API server. It is not listening until Start.
func New(deps Deps) (*Server, error) {
	if deps.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if deps.Executor == nil {
		return nil, fmt.Errorf("command executor is required")
	}
	if deps.Users == nil {
		return nil, fmt.Errorf("user service is required")
	}
	if deps.Board == nil {
		return nil, fmt.Errorf("status board is required")
	}

	s := &Server{
		cfg:      deps.Config,
		logger:   deps.Logger,
		executor: deps.Executor,
		users:    deps.Users,
		board:    deps.Board,
		registry: deps.Registry,
		audit:    deps.Audit,
		monitor:  deps.Monitor,
		checks:   deps.Checks,
		version:  deps.Version,
	}
	if s.audit != nil {
		s.auditCh = make(chan *audit.Entry, auditChanSize)
	}
	s.handler = s.buildRouter()
	return s, nil
}

// Handler returns the routed handler, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Start begins listening and starts the audit writer. The listener runs
// in a background goroutine until Close.
func (s *Server) Start(ctx context.Context) error {
	var srvCtx context.Context
	srvCtx, s.cancel = context.WithCancel(ctx)

	if s.auditCh != nil {
		s.wg.Add(1)
		go s.drainAuditLog(srvCtx)
	}

	s.server = &http.Server{
		Addr:              net.JoinHostPort(s.cfg.Host, fmt.Sprint(s.cfg.Port)),
		Handler:           s.handler,
		ReadTimeout:       time.Duration(s.cfg.Timeouts.Read) * time.Second,
		ReadHeaderTimeout: time.Duration(s.cfg.Timeouts.Read) * time.Second,
		WriteTimeout:      time.Duration(s.cfg.Timeouts.Write) * time.Second,
		IdleTimeout:       time.Duration(s.cfg.Timeouts.Idle) * time.Second,
	}

	ln, err := net.Listen("tcp", s.server.Addr)
	if err != nil {
		s.cancel()
		return fmt.Errorf("listening on %s: %w", s.server.Addr, err)
	}

	go func() {
		s.logger.Info("API server listening", "address", ln.Addr().String())
		if err := s.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("API server error", "error", err)
		}
	}()

	return nil
}

// Close gracefully shuts down the server and flushes queued audit entries.
func (s *Server) Close() error {
	if s.server == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), gracefulShutdownTimeout)
	defer cancel()

	s.logger.Info("API server shutting down")
	err := s.server.Shutdown(ctx)

	if s.cancel != nil {
		s.cancel()
	}
	s.wg.Wait()

	if err != nil {
		return fmt.Errorf("shutting down API server: %w", err)
	}
	return nil
}

// HealthCheck reports whether the server has been started.
func (s *Server) HealthCheck(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return fmt.Errorf("api health check: %w", ctx.Err())
	default:
	}

	if s.server == nil {
		return fmt.Errorf("api server not started")
	}
	return nil
}
