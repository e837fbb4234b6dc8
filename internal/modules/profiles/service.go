package profiles

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/shubhams167/aura/internal/domain"
)

// Service records sign-ins and serves the current user's profile
type Service struct {
	store domain.ProfileStore
	log   zerolog.Logger
}

// NewService creates a new profile service
func NewService(store domain.ProfileStore, log zerolog.Logger) *Service {
	return &Service{
		store: store,
		log:   log.With().Str("service", "profiles").Logger(),
	}
}

// RecordSignIn upserts the principal's profile.
// The error is returned for reporting only; callers must not block sign-in on it.
func (s *Service) RecordSignIn(ctx context.Context, p domain.Principal) (*domain.UserProfile, error) {
	if p.ID == "" {
		return nil, domain.ErrNotAuthenticated
	}
	p.Email = strings.TrimSpace(p.Email)
	if p.Email == "" {
		return nil, fmt.Errorf("%w: email is required", domain.ErrInvalidInput)
	}

	profile, err := s.store.Upsert(ctx, p)
	if err != nil {
		s.log.Error().Err(err).Msg("Failed to record sign-in")
		return nil, err
	}

	s.log.Info().Str("user_id", string(p.ID)).Msg("Sign-in recorded")
	return profile, nil
}

// Get returns the stored profile, or nil when the user never signed in
func (s *Service) Get(ctx context.Context, id domain.UserIdentity) (*domain.UserProfile, error) {
	return s.store.Get(ctx, id)
}
