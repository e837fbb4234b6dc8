package credentials

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/shubhams167/aura/internal/domain"
)

// ConnOrTx is satisfied by both *pgxpool.Pool and pgx.Tx
type ConnOrTx interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
}

// PostgresRepository is the credential store for Postgres deployments
type PostgresRepository struct {
	db  ConnOrTx
	log zerolog.Logger
}

// NewPostgresRepository creates a credential repository on top of a pgx pool
func NewPostgresRepository(pool *pgxpool.Pool, log zerolog.Logger) *PostgresRepository {
	return &PostgresRepository{
		db:  pool,
		log: log.With().Str("repository", "credentials_pg").Logger(),
	}
}

const pgSelectColumns = `id::text, user_id, broker, encrypted_api_key, encrypted_api_secret, iv, iv_secret, created_at, updated_at`

// Upsert inserts or replaces the record for (userID, broker) in one statement
func (r *PostgresRepository) Upsert(ctx context.Context, userID domain.UserIdentity, broker domain.BrokerKind, creds domain.EncryptedCredentials) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO broker_credentials (
			id, user_id, broker, encrypted_api_key, encrypted_api_secret, iv, iv_secret, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, now(), now())
		ON CONFLICT (user_id, broker) DO UPDATE SET
			encrypted_api_key = EXCLUDED.encrypted_api_key,
			encrypted_api_secret = EXCLUDED.encrypted_api_secret,
			iv = EXCLUDED.iv,
			iv_secret = EXCLUDED.iv_secret,
			updated_at = now()
	`, uuid.NewString(), string(userID), string(broker),
		creds.EncryptedAPIKey, creds.EncryptedAPISecret, creds.IV, creds.IVSecret)
	if err != nil {
		return fmt.Errorf("%w: failed to upsert %s credentials: %v", domain.ErrStore, broker, err)
	}

	r.log.Debug().Str("broker", string(broker)).Msg("Credentials stored")
	return nil
}

// Find returns the record for (userID, broker), or nil when absent
func (r *PostgresRepository) Find(ctx context.Context, userID domain.UserIdentity, broker domain.BrokerKind) (*domain.CredentialRecord, error) {
	row := r.db.QueryRow(ctx,
		"SELECT "+pgSelectColumns+" FROM broker_credentials WHERE user_id = $1 AND broker = $2",
		string(userID), string(broker))

	rec, err := scanPgRecord(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: failed to find %s credentials: %v", domain.ErrStore, broker, err)
	}
	return rec, nil
}

// ListForUser returns every record owned by userID, oldest first
func (r *PostgresRepository) ListForUser(ctx context.Context, userID domain.UserIdentity) ([]domain.CredentialRecord, error) {
	rows, err := r.db.Query(ctx,
		"SELECT "+pgSelectColumns+" FROM broker_credentials WHERE user_id = $1 ORDER BY created_at ASC",
		string(userID))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to list credentials: %v", domain.ErrStore, err)
	}
	defer rows.Close()

	var records []domain.CredentialRecord
	for rows.Next() {
		rec, err := scanPgRecord(rows)
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

// Delete removes the record for (userID, broker); absent records are not an error
func (r *PostgresRepository) Delete(ctx context.Context, userID domain.UserIdentity, broker domain.BrokerKind) error {
	if _, err := r.db.Exec(ctx,
		"DELETE FROM broker_credentials WHERE user_id = $1 AND broker = $2",
		string(userID), string(broker)); err != nil {
		return fmt.Errorf("%w: failed to delete %s credentials: %v", domain.ErrStore, broker, err)
	}
	return nil
}

func scanPgRecord(row pgx.Row) (*domain.CredentialRecord, error) {
	var (
		rec            domain.CredentialRecord
		userID, broker string
	)
	err := row.Scan(&rec.ID, &userID, &broker,
		&rec.EncryptedAPIKey, &rec.EncryptedAPISecret, &rec.IV, &rec.IVSecret,
		&rec.CreatedAt, &rec.UpdatedAt)
	if err != nil {
		return nil, err
	}
	rec.UserID = domain.UserIdentity(userID)
	rec.Broker = domain.BrokerKind(broker)
	return &rec, nil
}
