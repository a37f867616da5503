package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/nerrad567/homeguard-core/internal/auth"
	"github.com/nerrad567/homeguard-core/internal/command"
	"github.com/nerrad567/homeguard-core/internal/device"
	"github.com/nerrad567/homeguard-core/internal/validation"
)

// Error represents a structured error response.
type Error struct {
	Status  int    `json:"status"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

// Error codes.
const (
	ErrCodeBadRequest   = "bad_request"
	ErrCodeNotFound     = "not_found"
	ErrCodeUnauthorized = "unauthorised"
	ErrCodeForbidden    = "forbidden"
	ErrCodeConflict     = "conflict"
	ErrCodeInternal     = "internal_error"
	ErrCodeValidation   = "validation_error"
	ErrCodePersistence  = "state_unconfirmed"
	ErrCodeBusy         = "device_busy"
)

// writeJSON writes a JSON response with the given status code and payload.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		//nolint:errcheck // Best-effort write to response; connection may be closed
		json.NewEncoder(w).Encode(v)
	}
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, Error{Status: status, Code: code, Message: message})
}

func writeBadRequest(w http.ResponseWriter, message string) {
	writeError(w, http.StatusBadRequest, ErrCodeBadRequest, message)
}

func writeUnauthorized(w http.ResponseWriter, message string) {
	writeError(w, http.StatusUnauthorized, ErrCodeUnauthorized, message)
}

func writeForbidden(w http.ResponseWriter, message string) {
	writeError(w, http.StatusForbidden, ErrCodeForbidden, message)
}

func writeInternalError(w http.ResponseWriter, message string) {
	writeError(w, http.StatusInternalServerError, ErrCodeInternal, message)
}

// writeDomainError maps package sentinel errors to HTTP responses.
// Unrecognised errors are logged and reported as 500.
func (s *Server) writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *validation.Error
	switch {
	case errors.As(err, &verr):
		writeJSON(w, http.StatusBadRequest, Error{
			Status:  http.StatusBadRequest,
			Code:    ErrCodeValidation,
			Message: verr.Reason,
			Field:   verr.Field,
		})

	case errors.Is(err, device.ErrInvalidArgument),
		errors.Is(err, device.ErrInvalidDevice),
		errors.Is(err, device.ErrInvalidKind),
		errors.Is(err, command.ErrUnknownAction),
		errors.Is(err, command.ErrMissingValue),
		errors.Is(err, auth.ErrInvalidRole):
		writeError(w, http.StatusBadRequest, ErrCodeValidation, err.Error())

	case errors.Is(err, device.ErrDeviceNotFound):
		writeError(w, http.StatusNotFound, ErrCodeNotFound, "device not found")
	case errors.Is(err, auth.ErrUserNotFound):
		writeError(w, http.StatusNotFound, ErrCodeNotFound, "user not found")

	case errors.Is(err, command.ErrForbidden),
		errors.Is(err, auth.ErrForbidden),
		errors.Is(err, auth.ErrSelfModification):
		writeForbidden(w, err.Error())

	case errors.Is(err, auth.ErrInvalidCredentials):
		writeUnauthorized(w, "invalid credentials")

	case errors.Is(err, device.ErrDeviceExists):
		writeError(w, http.StatusConflict, ErrCodeConflict, "device name already in use")
	case errors.Is(err, auth.ErrUserExists):
		writeError(w, http.StatusConflict, ErrCodeConflict, "email already registered")

	case errors.Is(err, command.ErrPersistence):
		s.logger.Error("device state not persisted", "error", err, "path", r.URL.Path)
		writeError(w, http.StatusServiceUnavailable, ErrCodePersistence, "the device state could not be saved; refresh and retry")

	case errors.Is(err, context.DeadlineExceeded):
		writeError(w, http.StatusServiceUnavailable, ErrCodeBusy, "device is busy; retry shortly")

	default:
		s.logger.Error("request failed", "error", err, "method", r.Method, "path", r.URL.Path)
		writeInternalError(w, "internal server error")
	}
}
