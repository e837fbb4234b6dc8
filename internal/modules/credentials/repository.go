// Package credentials provides storage for encrypted broker API credentials.
// This file implements the Repository, which handles credentials stored in the SQLite database.
// Each user has at most one credential record per broker; the record holds only ciphertext.
package credentials

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/shubhams167/aura/internal/domain"
)

// Repository handles credential database operations on SQLite.
// Uniqueness per (user_id, broker) is enforced by the schema; Upsert relies on it
// so that concurrent connects for the same pair converge on one row.
type Repository struct {
	db  *sql.DB        // broker_credentials table
	log zerolog.Logger // Structured logger
	now func() time.Time
}

// NewRepository creates a new credentials repository.
//
// Parameters:
//   - db: Database connection holding the broker_credentials table
//   - log: Structured logger
//
// Returns:
//   - *Repository: Initialized repository instance
func NewRepository(db *sql.DB, log zerolog.Logger) *Repository {
	return &Repository{
		db:  db,
		log: log.With().Str("repository", "credentials").Logger(),
		now: time.Now,
	}
}

// Upsert inserts the credential record for (userID, broker), or replaces the
// encrypted fields of the existing one. The record id and created_at survive updates.
//
// Parameters:
//   - ctx: Request context
//   - userID: Owner of the credentials
//   - broker: Broker the credentials belong to
//   - creds: Encrypted credential fields
//
// Returns:
//   - error: Wrapped domain.ErrStore if the write fails
func (r *Repository) Upsert(ctx context.Context, userID domain.UserIdentity, broker domain.BrokerKind, creds domain.EncryptedCredentials) error {
	now := r.now().UTC().Format(timeLayout)

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO broker_credentials (
			id, user_id, broker, encrypted_api_key, encrypted_api_secret, iv, iv_secret, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(user_id, broker) DO UPDATE SET
			encrypted_api_key = excluded.encrypted_api_key,
			encrypted_api_secret = excluded.encrypted_api_secret,
			iv = excluded.iv,
			iv_secret = excluded.iv_secret,
			updated_at = excluded.updated_at
	`, uuid.NewString(), string(userID), string(broker),
		creds.EncryptedAPIKey, creds.EncryptedAPISecret, creds.IV, creds.IVSecret, now, now)
	if err != nil {
		return fmt.Errorf("%w: failed to upsert %s credentials: %v", domain.ErrStore, broker, err)
	}

	r.log.Debug().Str("broker", string(broker)).Msg("Credentials stored")
	return nil
}

// Find returns the credential record for (userID, broker).
// Returns nil if no record exists (not an error).
func (r *Repository) Find(ctx context.Context, userID domain.UserIdentity, broker domain.BrokerKind) (*domain.CredentialRecord, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, user_id, broker, encrypted_api_key, encrypted_api_secret, iv, iv_secret, created_at, updated_at
		FROM broker_credentials
		WHERE user_id = ? AND broker = ?
	`, string(userID), string(broker))

	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: failed to find %s credentials: %v", domain.ErrStore, broker, err)
	}
	return rec, nil
}

// ListForUser returns every credential record owned by userID, oldest first
func (r *Repository) ListForUser(ctx context.Context, userID domain.UserIdentity) ([]domain.CredentialRecord, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, user_id, broker, encrypted_api_key, encrypted_api_secret, iv, iv_secret, created_at, updated_at
		FROM broker_credentials
		WHERE user_id = ?
		ORDER BY created_at ASC
	`, string(userID))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to list credentials: %v", domain.ErrStore, err)
	}
	defer rows.Close()

	var records []domain.CredentialRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: failed to scan credential row: %v", domain.ErrStore, err)
		}
		records = append(records, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: error iterating credentials: %v", domain.ErrStore, err)
	}

	return records, nil
}

// Delete removes the credential record for (userID, broker).
// Deleting a record that does not exist is not an error.
func (r *Repository) Delete(ctx context.Context, userID domain.UserIdentity, broker domain.BrokerKind) error {
	result, err := r.db.ExecContext(ctx,
		"DELETE FROM broker_credentials WHERE user_id = ? AND broker = ?",
		string(userID), string(broker))
	if err != nil {
		return fmt.Errorf("%w: failed to delete %s credentials: %v", domain.ErrStore, broker, err)
	}

	if n, _ := result.RowsAffected(); n > 0 {
		r.log.Debug().Str("broker", string(broker)).Msg("Credentials removed")
	}
	return nil
}

// timeLayout is fixed-width so that stored timestamps sort lexically
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanRecord(s scanner) (*domain.CredentialRecord, error) {
	var (
		rec                  domain.CredentialRecord
		userID, broker       string
		createdAt, updatedAt string
	)

	err := s.Scan(&rec.ID, &userID, &broker,
		&rec.EncryptedAPIKey, &rec.EncryptedAPISecret, &rec.IV, &rec.IVSecret,
		&createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}

	rec.UserID = domain.UserIdentity(userID)
	rec.Broker = domain.BrokerKind(broker)
	if rec.CreatedAt, err = time.Parse(timeLayout, createdAt); err != nil {
		return nil, fmt.Errorf("invalid created_at %q: %w", createdAt, err)
	}
	if rec.UpdatedAt, err = time.Parse(timeLayout, updatedAt); err != nil {
		return nil, fmt.Errorf("invalid updated_at %q: %w", updatedAt, err)
	}
	return &rec, nil
}
