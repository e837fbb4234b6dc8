package testing

import (
	"context"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/shubhams167/aura/internal/database"
)

// NewTestPostgres runs a throwaway Postgres container with migrations applied.
// The test is skipped in -short mode or when no container runtime is reachable.
// The container and pool are released through t.Cleanup.
func NewTestPostgres(t *testing.T) *database.PostgresDB {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping Postgres integration test in short mode")
	}

	ctx := context.Background()
	container, err := func() (c *postgres.PostgresContainer, err error) {
		defer func() {
			if r := recover(); r != nil {
				t.Skipf("container runtime unavailable: %v", r)
			}
		}()
		return postgres.Run(ctx, "postgres:16-alpine",
			postgres.WithDatabase("aura"),
			postgres.WithUsername("aura"),
			postgres.WithPassword("aura"),
			testcontainers.WithWaitStrategy(
				wait.ForLog("database system is ready to accept connections").
					WithOccurrence(2).WithStartupTimeout(60*time.Second)),
		)
	}()
	if err != nil {
		t.Skipf("container runtime unavailable: %v", err)
	}
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("Failed to get Postgres connection string: %v", err)
	}

	db, err := database.NewPostgres(ctx, connStr)
	if err != nil {
		t.Fatalf("Failed to open test Postgres: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if _, _, err := db.Migrate(); err != nil {
		t.Fatalf("Failed to migrate test Postgres: %v", err)
	}
	return db
}
