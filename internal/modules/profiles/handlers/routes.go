package handlers

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers session and profile routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/session", h.HandleRecordSession) // Record sign-in (profile upsert)
	r.Get("/me", h.HandleGetMe)               // Current profile
}
