package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/nerrad567/homeguard-core/internal/audit"
	"github.com/nerrad567/homeguard-core/internal/auth"
)

type createUserRequest struct {
	Email    string    `json:"email"`
	Name     string    `json:"name"`
	Password string    `json:"password"`
	Role     auth.Role `json:"role,omitempty"`
}

type updateMeRequest struct {
	Name string `json:"name"`
}

type changePasswordRequest struct {
	Current string `json:"current_password"`
	New     string `json:"new_password"`
}

// handleCreateUser registers an account. Anyone may register a homeowner;
// only an admin caller may create another admin.
func (s *Server) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}
	if req.Role == "" {
		req.Role = auth.RoleHomeowner
	}

	var actor *auth.User
	if r.Header.Get(HeaderUserEmail) != "" {
		var err error
		actor, err = s.lookupActor(r)
		if err != nil {
			writeUnauthorized(w, "unknown "+HeaderUserEmail)
			return
		}
	}
	if req.Role == auth.RoleAdmin && (actor == nil || !auth.HasPermission(actor.Role, auth.PermUserManage)) {
		writeForbidden(w, "only admins can create admin accounts")
		return
	}

	user, err := s.users.Register(r.Context(), req.Email, req.Name, req.Password, req.Role)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	createdBy := user.Email
	if actor != nil {
		createdBy = actor.Email
	}
	s.logger.Info("user created", "email", user.Email, "role", user.Role, "created_by", createdBy)
	s.auditLog(audit.ActionCreate, user.Email, createdBy, map[string]any{"role": user.Role})

	writeJSON(w, http.StatusCreated, user)
}

func (s *Server) handleListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := s.users.List(r.Context())
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"users": users,
		"count": len(users),
	})
}

func (s *Server) handleGetMe(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, actorFromContext(r.Context()))
}

func (s *Server) handleUpdateMe(w http.ResponseWriter, r *http.Request) {
	var req updateMeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	actor := actorFromContext(r.Context())
	user, err := s.users.UpdateName(r.Context(), actor.Email, req.Name)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	s.auditLog(audit.ActionUpdate, actor.Email, actor.Email, map[string]any{"field": "name"})
	writeJSON(w, http.StatusOK, user)
}

func (s *Server) handleChangePassword(w http.ResponseWriter, r *http.Request) {
	var req changePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	actor := actorFromContext(r.Context())
	if err := s.users.ChangePassword(r.Context(), actor.Email, req.Current, req.New); err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	s.auditLog(audit.ActionUpdate, actor.Email, actor.Email, map[string]any{"field": "password"})
	w.WriteHeader(http.StatusNoContent)
}

// handleDeleteUser removes an account. Devices the user owned stay in the
// store; admins can still see and delete them.
func (s *Server) handleDeleteUser(w http.ResponseWriter, r *http.Request) {
	email := chi.URLParam(r, "email")
	actor := actorFromContext(r.Context())

	err := s.users.Delete(r.Context(), actor, email)
	if errors.Is(err, auth.ErrSelfModification) {
		writeForbidden(w, "cannot delete your own account")
		return
	}
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	s.logger.Info("user deleted", "email", email, "deleted_by", actor.Email)
	s.auditLog(audit.ActionDelete, email, actor.Email, nil)
	w.WriteHeader(http.StatusNoContent)
}
