package database

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jackc/pgx/v5/pgxpool"
)

//go:embed migrations/*.sql
var migrationFS embed.FS

// PostgresDB wraps a pgx connection pool for deployments backed by Postgres
type PostgresDB struct {
	pool    *pgxpool.Pool
	connStr string
}

// NewPostgres opens a pool against connStr and verifies connectivity
func NewPostgres(ctx context.Context, connStr string) (*PostgresDB, error) {
	pool, err := pgxpool.New(ctx, connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to create postgres pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping postgres: %w", err)
	}

	return &PostgresDB{pool: pool, connStr: connStr}, nil
}

// Pool returns the underlying pgx pool
// Used by repositories to execute queries
func (db *PostgresDB) Pool() *pgxpool.Pool {
	return db.pool
}

// Migrate runs the embedded migrations up to the latest version.
// Returns the schema version before and after.
func (db *PostgresDB) Migrate() (uint, uint, error) {
	var versionFrom, versionTo uint

	source, err := iofs.New(migrationFS, "migrations")
	if err != nil {
		return versionFrom, versionTo, fmt.Errorf("failed to open migration source: %w", err)
	}

	m, err := migrate.NewWithSourceInstance("iofs", source, db.connStr)
	if err != nil {
		return versionFrom, versionTo, fmt.Errorf("failed to initiate migration: %w", err)
	}
	defer func() { _, _ = m.Close() }()

	versionFrom, _, err = m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return versionFrom, versionTo, fmt.Errorf("failed to get migration version: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return versionFrom, versionTo, fmt.Errorf("failed to run migration: %w", err)
	}

	versionTo, dirty, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return versionFrom, versionTo, fmt.Errorf("failed to get migration version after running: %w", err)
	}
	if dirty {
		return versionFrom, versionTo, fmt.Errorf("migration left schema dirty at version %d", versionTo)
	}
	return versionFrom, versionTo, nil
}

// QuickCheck pings the pool
func (db *PostgresDB) QuickCheck(ctx context.Context) error {
	return db.pool.Ping(ctx)
}

// HealthCheck pings the pool and verifies the migrated schema is not left dirty
func (db *PostgresDB) HealthCheck(ctx context.Context) error {
	if err := db.pool.Ping(ctx); err != nil {
		return fmt.Errorf("ping failed for postgres: %w", err)
	}

	var dirty bool
	if err := db.pool.QueryRow(ctx, "SELECT dirty FROM schema_migrations LIMIT 1").Scan(&dirty); err != nil {
		return fmt.Errorf("schema version query failed for postgres: %w", err)
	}
	if dirty {
		return fmt.Errorf("schema migrations are dirty for postgres")
	}
	return nil
}

// Close closes every pooled connection
func (db *PostgresDB) Close() error {
	db.pool.Close()
	return nil
}
