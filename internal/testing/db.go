// Package testing provides testing utilities and helpers for the aura project.
package testing

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/shubhams167/aura/internal/database"
)

// NewTestDB creates a file-backed SQLite database for testing with automatic schema migration.
// Returns the database instance and a cleanup function that closes the connection.
// The cleanup function is idempotent and can be called multiple times safely.
//
// Supported schema names:
//   - "aura" - applies aura_schema.sql
//   - Unknown names - creates empty database (no schema applied)
func NewTestDB(t *testing.T, name string) (*database.DB, func()) {
	t.Helper()

	// Temporary files keep each test isolated
	tmpFile, err := os.CreateTemp("", fmt.Sprintf("test_%s_*.db", name))
	if err != nil {
		t.Fatalf("Failed to create temporary database file: %v", err)
	}
	tmpPath := tmpFile.Name()
	_ = tmpFile.Close()

	db, err := database.New(database.Config{
		Path:    tmpPath,
		Profile: database.ProfileStandard,
		Name:    name,
	})
	if err != nil {
		_ = os.Remove(tmpPath)
		t.Fatalf("Failed to create test database %s: %v", name, err)
	}

	if err := db.Migrate(); err != nil {
		_ = db.Close()
		_ = os.Remove(tmpPath)
		t.Fatalf("Failed to migrate test database %s: %v", name, err)
	}

	closed := false
	return db, func() {
		if closed {
			return
		}
		closed = true
		if err := db.Close(); err != nil {
			t.Logf("Warning: Failed to close test database %s: %v", name, err)
		}
		for _, p := range []string{tmpPath, tmpPath + "-wal", tmpPath + "-shm"} {
			_ = os.Remove(p)
		}
	}
}

// SeedProfile inserts a user profile row so that credential rows can reference it
func SeedProfile(t *testing.T, db *database.DB, id, email string) {
	t.Helper()

	now := time.Now().UTC().Format("2006-01-02T15:04:05.000000000Z07:00")
	_, err := db.Conn().ExecContext(context.Background(),
		"INSERT INTO user_profiles (id, email, name, image, created_at, updated_at) VALUES (?, ?, '', '', ?, ?)",
		id, email, now, now)
	if err != nil {
		t.Fatalf("Failed to seed profile %s: %v", id, err)
	}
}
