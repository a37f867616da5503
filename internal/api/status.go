package api

import (
	"context"
	"net/http"
	"time"

	"github.com/nerrad567/homeguard-core/internal/status"
)

const healthCheckTimeout = 3 * time.Second

// handleHealth reports "ok" when every registered collaborator is healthy
// and "degraded" otherwise. It always answers 200 so load balancers keep
// routing while optional services are down.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
	defer cancel()

	overall := "ok"
	checks := make(map[string]string, len(s.checks))
	for name, c := range s.checks {
		if c == nil {
			continue
		}
		if err := c.HealthCheck(ctx); err != nil {
			checks[name] = err.Error()
			overall = "degraded"
			continue
		}
		checks[name] = "ok"
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status":  overall,
		"version": s.version,
		"checks":  checks,
	})
}

// handleStatus returns the status board. Keys the monitor has not written
// yet are reported as "N/A".
func (s *Server) handleStatus(w http.ResponseWriter, _ *http.Request) {
	resp := map[string]any{
		"security_status": s.board.Get(status.KeySecurity, "N/A"),
		"temperature":     s.board.Get(status.KeyTemperature, "N/A"),
		"last_check":      s.board.Get(status.KeyLastCheck, "N/A"),
		"board":           s.board.Snapshot(),
	}
	if s.monitor != nil {
		resp["monitor"] = map[string]any{
			"state": s.monitor.State().String(),
			"ticks": s.monitor.Ticks(),
		}
	}
	writeJSON(w, http.StatusOK, resp)
}
