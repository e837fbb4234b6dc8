// Package handlers provides HTTP handlers for user sessions and profiles.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/shubhams167/aura/internal/auth"
	"github.com/shubhams167/aura/internal/domain"
	"github.com/shubhams167/aura/internal/modules/profiles"
)

// Handler handles session and profile HTTP requests
type Handler struct {
	service *profiles.Service
	log     zerolog.Logger
}

// NewHandler creates a new profiles handler
func NewHandler(service *profiles.Service, log zerolog.Logger) *Handler {
	return &Handler{
		service: service,
		log:     log.With().Str("handler", "profiles").Logger(),
	}
}

// HandleRecordSession records a sign-in for the principal forwarded by the identity proxy.
// A storage failure is reported in the body but never turns the request into an error,
// so sign-in is not blocked by it.
func (h *Handler) HandleRecordSession(w http.ResponseWriter, r *http.Request) {
	p, ok := auth.PrincipalFromContext(r.Context())
	if !ok {
		h.writeError(w, http.StatusUnauthorized, "Not authenticated")
		return
	}

	profile, err := h.service.RecordSignIn(r.Context(), p)
	if errors.Is(err, domain.ErrInvalidInput) {
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err != nil {
		h.writeJSON(w, http.StatusOK, map[string]interface{}{
			"success":         true,
			"profile_updated": false,
		})
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":         true,
		"profile_updated": true,
		"profile":         profile,
	})
}

// HandleGetMe returns the stored profile of the caller
func (h *Handler) HandleGetMe(w http.ResponseWriter, r *http.Request) {
	p, ok := auth.PrincipalFromContext(r.Context())
	if !ok {
		h.writeError(w, http.StatusUnauthorized, "Not authenticated")
		return
	}

	profile, err := h.service.Get(r.Context(), p.ID)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to load profile")
		h.writeError(w, http.StatusInternalServerError, "Failed to load profile")
		return
	}
	if profile == nil {
		h.writeError(w, http.StatusNotFound, "Profile not found")
		return
	}

	h.writeJSON(w, http.StatusOK, profile)
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]interface{}{"success": false, "error": message})
}
