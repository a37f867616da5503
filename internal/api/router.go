package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/nerrad567/homeguard-core/internal/auth"
)

// buildRouter creates the HTTP router with all routes and middleware.
func (s *Server) buildRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(s.requestIDMiddleware)
	r.Use(s.loggingMiddleware)
	r.Use(s.recoveryMiddleware)
	r.Use(s.bodySizeLimitMiddleware)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", s.handleHealth)

		// Open registration; the handler checks the caller when one is named.
		r.Post("/users", s.handleCreateUser)

		r.Group(func(r chi.Router) {
			r.Use(s.actorMiddleware)

			r.With(requirePermission(auth.PermStatusRead)).Get("/status", s.handleStatus)

			r.Route("/devices", func(r chi.Router) {
				r.Get("/", s.handleListDevices)
				r.Post("/", s.handleCreateDevice)
				r.Post("/defaults", s.handleSeedDefaults)
				r.With(requirePermission(auth.PermDeviceManageAny)).Get("/stats", s.handleDeviceStats)

				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", s.handleGetDevice)
					r.Delete("/", s.handleDeleteDevice)
					r.Post("/commands", s.handleCommand)
				})
			})

			r.With(requirePermission(auth.PermAuditRead)).Get("/audit", s.handleListAuditLogs)

			// Flat patterns: POST /users is registered outside this group.
			r.With(requirePermission(auth.PermUserManage)).Get("/users", s.handleListUsers)
			r.Get("/users/me", s.handleGetMe)
			r.Patch("/users/me", s.handleUpdateMe)
			r.Put("/users/me/password", s.handleChangePassword)
			r.With(requirePermission(auth.PermUserManage)).Delete("/users/{email}", s.handleDeleteUser)
		})
	})

	return r
}
