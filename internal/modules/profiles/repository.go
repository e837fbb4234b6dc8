// Package profiles persists the users who have signed in.
// Credential records reference profiles, so a profile must exist before a broker can be linked.
package profiles

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/shubhams167/aura/internal/domain"
)

const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Repository handles user profile operations on SQLite
type Repository struct {
	db  *sql.DB
	log zerolog.Logger
	now func() time.Time
}

// NewRepository creates a new profile repository
func NewRepository(db *sql.DB, log zerolog.Logger) *Repository {
	return &Repository{
		db:  db,
		log: log.With().Str("repository", "profiles").Logger(),
		now: time.Now,
	}
}

// Upsert inserts the profile or refreshes email, name and image of an existing one
func (r *Repository) Upsert(ctx context.Context, p domain.Principal) (*domain.UserProfile, error) {
	now := r.now().UTC().Format(timeLayout)

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO user_profiles (id, email, name, image, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			email = excluded.email,
			name = excluded.name,
			image = excluded.image,
			updated_at = excluded.updated_at
	`, string(p.ID), p.Email, p.Name, p.Image, now, now)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to upsert profile: %v", domain.ErrStore, err)
	}

	return r.Get(ctx, p.ID)
}

// Get returns the profile, or nil if it does not exist
func (r *Repository) Get(ctx context.Context, id domain.UserIdentity) (*domain.UserProfile, error) {
	var (
		p                    domain.UserProfile
		pid                  string
		name, image          sql.NullString
		createdAt, updatedAt string
	)

	err := r.db.QueryRowContext(ctx,
		"SELECT id, email, name, image, created_at, updated_at FROM user_profiles WHERE id = ?",
		string(id)).Scan(&pid, &p.Email, &name, &image, &createdAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: failed to get profile: %v", domain.ErrStore, err)
	}

	p.ID = domain.UserIdentity(pid)
	p.Name = name.String
	p.Image = image.String
	if p.CreatedAt, err = time.Parse(timeLayout, createdAt); err != nil {
		return nil, fmt.Errorf("%w: invalid created_at %q", domain.ErrStore, createdAt)
	}
	if p.UpdatedAt, err = time.Parse(timeLayout, updatedAt); err != nil {
		return nil, fmt.Errorf("%w: invalid updated_at %q", domain.ErrStore, updatedAt)
	}
	return &p, nil
}

var _ domain.ProfileStore = (*Repository)(nil)
