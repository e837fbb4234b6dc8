package profiles

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/shubhams167/aura/internal/domain"
)

// PostgresRepository handles user profile operations on Postgres
type PostgresRepository struct {
	pool *pgxpool.Pool
	log  zerolog.Logger
}

// NewPostgresRepository creates a profile repository on top of a pgx pool
func NewPostgresRepository(pool *pgxpool.Pool, log zerolog.Logger) *PostgresRepository {
	return &PostgresRepository{
		pool: pool,
		log:  log.With().Str("repository", "profiles_pg").Logger(),
	}
}

// Upsert inserts the profile or refreshes an existing one, returning the stored row
func (r *PostgresRepository) Upsert(ctx context.Context, p domain.Principal) (*domain.UserProfile, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO user_profiles (id, email, name, image, created_at, updated_at)
		VALUES ($1, $2, $3, $4, now(), now())
		ON CONFLICT (id) DO UPDATE SET
			email = EXCLUDED.email,
			name = EXCLUDED.name,
			image = EXCLUDED.image,
			updated_at = now()
		RETURNING id, email, COALESCE(name, ''), COALESCE(image, ''), created_at, updated_at
	`, string(p.ID), p.Email, p.Name, p.Image)

	profile, err := scanProfile(row)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to upsert profile: %v", domain.ErrStore, err)
	}
	return profile, nil
}

// Get returns the profile, or nil if it does not exist
func (r *PostgresRepository) Get(ctx context.Context, id domain.UserIdentity) (*domain.UserProfile, error) {
	row := r.pool.QueryRow(ctx,
		"SELECT id, email, COALESCE(name, ''), COALESCE(image, ''), created_at, updated_at FROM user_profiles WHERE id = $1",
		string(id))

	profile, err := scanProfile(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: failed to get profile: %v", domain.ErrStore, err)
	}
	return profile, nil
}

func scanProfile(row pgx.Row) (*domain.UserProfile, error) {
	var (
		p  domain.UserProfile
		id string
	)
	if err := row.Scan(&id, &p.Email, &p.Name, &p.Image, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	p.ID = domain.UserIdentity(id)
	return &p, nil
}

var _ domain.ProfileStore = (*PostgresRepository)(nil)
