/**
 * Package di provides dependency injection type definitions.
 *
 * This package defines the Container type which holds all application dependencies.
 * The Container is the single source of truth for all service instances and is
 * passed to the server for access to handlers and health checks.
 */
package di

import (
	"context"

	"github.com/shubhams167/aura/internal/clients"
	"github.com/shubhams167/aura/internal/database"
	"github.com/shubhams167/aura/internal/domain"
	"github.com/shubhams167/aura/internal/metrics"
	"github.com/shubhams167/aura/internal/modules/brokers"
	"github.com/shubhams167/aura/internal/modules/profiles"
	"github.com/shubhams167/aura/internal/vault"
)

// HealthChecker is satisfied by both database backends
type HealthChecker interface {
	// QuickCheck pings the database
	QuickCheck(ctx context.Context) error
	// HealthCheck also verifies storage integrity and is slower
	HealthCheck(ctx context.Context) error
}

// Container holds all application dependencies
type Container struct {
	// Databases (exactly one is set)
	SQLiteDB   *database.DB
	PostgresDB *database.PostgresDB

	// Repositories
	CredentialStore domain.CredentialStore
	ProfileStore    domain.ProfileStore

	// Infrastructure
	Cipher         *vault.Cipher
	BrokerRegistry *clients.Registry
	Metrics        *metrics.Metrics

	// Services
	BrokerService  *brokers.Service
	ProfileService *profiles.Service
}

// DB returns whichever database backs the container
func (c *Container) DB() HealthChecker {
	if c.PostgresDB != nil {
		return c.PostgresDB
	}
	if c.SQLiteDB != nil {
		return c.SQLiteDB
	}
	return nil
}

// DatabaseDriver names the active database backend
func (c *Container) DatabaseDriver() string {
	if c.PostgresDB != nil {
		return "postgres"
	}
	return "sqlite"
}

// Close releases the database connections
func (c *Container) Close() error {
	if c.PostgresDB != nil {
		return c.PostgresDB.Close()
	}
	if c.SQLiteDB != nil {
		return c.SQLiteDB.Close()
	}
	return nil
}
