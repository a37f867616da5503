package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/nerrad567/homeguard-core/internal/command"
	"github.com/nerrad567/homeguard-core/internal/device"
)

type createDeviceRequest struct {
	Owner string      `json:"owner,omitempty"` // defaults to the caller
	Kind  device.Kind `json:"kind"`
	Name  string      `json:"name"`
}

func records(devices []device.Device) []device.Record {
	out := make([]device.Record, 0, len(devices))
	for _, d := range devices {
		out = append(out, d.Record())
	}
	return out
}

func deviceID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// handleListDevices returns the devices of ?owner= (default: the caller).
func (s *Server) handleListDevices(w http.ResponseWriter, r *http.Request) {
	actor := actorFromContext(r.Context())
	owner := r.URL.Query().Get("owner")
	if owner == "" {
		owner = actor.Email
	}

	devices, err := s.executor.Devices(r.Context(), actor, owner)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"devices": records(devices),
		"count":   len(devices),
	})
}

func (s *Server) handleGetDevice(w http.ResponseWriter, r *http.Request) {
	id, ok := deviceID(r)
	if !ok {
		writeBadRequest(w, "invalid device id")
		return
	}

	d, err := s.executor.Device(r.Context(), actorFromContext(r.Context()), id)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, d.Record())
}

func (s *Server) handleCreateDevice(w http.ResponseWriter, r *http.Request) {
	var req createDeviceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	actor := actorFromContext(r.Context())
	if req.Owner == "" {
		req.Owner = actor.Email
	}

	d, err := s.executor.CreateDevice(r.Context(), actor, req.Owner, req.Kind, req.Name)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, d.Record())
}

// handleSeedDefaults gives an empty account the demo Kitchen Light and
// Garage Gate. ?owner= lets an admin seed someone else's account.
func (s *Server) handleSeedDefaults(w http.ResponseWriter, r *http.Request) {
	actor := actorFromContext(r.Context())
	owner := r.URL.Query().Get("owner")
	if owner == "" {
		owner = actor.Email
	}
	if _, err := s.executor.Devices(r.Context(), actor, owner); err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	seeded, err := s.executor.SeedDefaults(r.Context(), owner)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"devices": records(seeded),
		"count":   len(seeded),
	})
}

func (s *Server) handleDeleteDevice(w http.ResponseWriter, r *http.Request) {
	id, ok := deviceID(r)
	if !ok {
		writeBadRequest(w, "invalid device id")
		return
	}

	if err := s.executor.DeleteDevice(r.Context(), actorFromContext(r.Context()), id); err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleCommand runs turn_on, turn_off or adjust_setting on one device.
//
// A 503 with code state_unconfirmed means the transition was attempted but
// not saved; the body still carries the attempted result.
func (s *Server) handleCommand(w http.ResponseWriter, r *http.Request) {
	id, ok := deviceID(r)
	if !ok {
		writeBadRequest(w, "invalid device id")
		return
	}

	var cmd command.Command
	if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	actor := actorFromContext(r.Context())
	res, err := s.executor.Execute(r.Context(), actor, id, cmd)
	if errors.Is(err, command.ErrPersistence) {
		s.logger.Error("device state not persisted", "device_id", id, "command_id", res.CommandID, "error", err)
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{
			"status":  http.StatusServiceUnavailable,
			"code":    ErrCodePersistence,
			"message": "the device state could not be saved; refresh and retry",
			"result":  res,
		})
		return
	}
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleDeviceStats(w http.ResponseWriter, _ *http.Request) {
	if s.registry == nil {
		writeInternalError(w, "device registry not configured")
		return
	}
	writeJSON(w, http.StatusOK, s.registry.Stats())
}
