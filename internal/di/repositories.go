package di

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/shubhams167/aura/internal/modules/credentials"
	"github.com/shubhams167/aura/internal/modules/profiles"
)

// InitializeRepositories creates the repositories for the container's database backend
func InitializeRepositories(container *Container, log zerolog.Logger) error {
	switch {
	case container.PostgresDB != nil:
		pool := container.PostgresDB.Pool()
		container.CredentialStore = credentials.NewPostgresRepository(pool, log)
		container.ProfileStore = profiles.NewPostgresRepository(pool, log)

	case container.SQLiteDB != nil:
		conn := container.SQLiteDB.Conn()
		container.CredentialStore = credentials.NewRepository(conn, log)
		container.ProfileStore = profiles.NewRepository(conn, log)

	default:
		return fmt.Errorf("no database initialized")
	}

	return nil
}
