package api

import (
	"context"
	"net/http"
	"strconv"

	"github.com/nerrad567/homeguard-core/internal/audit"
)

// auditLog enqueues an account audit entry for asynchronous write.
// If the queue is full the entry is dropped and a warning is logged.
// Device commands are audited by the executor itself.
func (s *Server) auditLog(action, email, actorEmail string, details map[string]any) {
	if s.auditCh == nil {
		return
	}

	entry := &audit.Entry{
		Action:     action,
		EntityType: audit.EntityUser,
		EntityID:   email,
		UserID:     actorEmail,
		Source:     "api",
		Outcome:    audit.OutcomeSuccess,
		Details:    details,
	}

	select {
	case s.auditCh <- entry:
	default:
		s.logger.Warn("audit log queue full, dropping entry",
			"action", action,
			"entity_id", email,
		)
	}
}

// drainAuditLog writes queued entries serially until ctx is cancelled,
// then drains whatever is left.
func (s *Server) drainAuditLog(ctx context.Context) {
	defer s.wg.Done()

	write := func(entry *audit.Entry) {
		if err := s.audit.Create(context.WithoutCancel(ctx), entry); err != nil {
			s.logger.Error("audit log write failed",
				"action", entry.Action,
				"entity_type", entry.EntityType,
				"error", err,
			)
		}
	}

	for {
		select {
		case entry := <-s.auditCh:
			write(entry)
		case <-ctx.Done():
			for {
				select {
				case entry := <-s.auditCh:
					write(entry)
				default:
					return
				}
			}
		}
	}
}

// handleListAuditLogs returns a page of audit entries, newest first.
//
// Query parameters: action, entity_type, entity_id, user_id, outcome,
// limit (default 50, max 200), offset.
func (s *Server) handleListAuditLogs(w http.ResponseWriter, r *http.Request) {
	if s.audit == nil {
		writeInternalError(w, "audit logging not configured")
		return
	}

	q := r.URL.Query()
	filter := audit.Filter{
		Action:     q.Get("action"),
		EntityType: q.Get("entity_type"),
		EntityID:   q.Get("entity_id"),
		UserID:     q.Get("user_id"),
		Outcome:    audit.Outcome(q.Get("outcome")),
	}
	if v := q.Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			filter.Limit = n
		}
	}
	if v := q.Get("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			filter.Offset = n
		}
	}

	result, err := s.audit.List(r.Context(), filter)
	if err != nil {
		s.logger.Error("failed to list audit logs", "error", err)
		writeInternalError(w, "failed to list audit logs")
		return
	}
	writeJSON(w, http.StatusOK, result)
}
