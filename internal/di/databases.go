package di

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/shubhams167/aura/internal/config"
	"github.com/shubhams167/aura/internal/database"
)

// InitializeDatabases opens the configured database, applies its schema and
// returns a container holding it
func InitializeDatabases(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*Container, error) {
	container := &Container{}

	switch cfg.DatabaseDriver {
	case config.DriverPostgres:
		db, err := database.NewPostgres(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("failed to open postgres: %w", err)
		}

		from, to, err := db.Migrate()
		if err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to migrate postgres: %w", err)
		}
		log.Info().Uint("from_version", from).Uint("to_version", to).Msg("Postgres schema migrated")
		container.PostgresDB = db

	default:
		db, err := database.New(database.Config{
			Path:    cfg.DatabasePath,
			Profile: database.ProfileVault,
			Name:    "aura",
		})
		if err != nil {
			return nil, fmt.Errorf("failed to open sqlite: %w", err)
		}

		if err := db.Migrate(); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to migrate sqlite: %w", err)
		}
		log.Info().
			Str("name", db.Name()).
			Str("profile", string(db.Profile())).
			Str("path", db.Path()).
			Msg("SQLite database ready")
		container.SQLiteDB = db
	}

	return container, nil
}
