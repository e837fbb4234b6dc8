// Package config provides configuration management functionality.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/shubhams167/aura/internal/auth"
	"github.com/shubhams167/aura/internal/domain"
)

// Database drivers
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// DefaultGrowwAPIBase is the production Groww API host
const DefaultGrowwAPIBase = "https://api.groww.in"

// Config holds application configuration
type Config struct {
	DataDir          string // Base directory for the SQLite database (always absolute)
	DatabaseDriver   string // DriverSQLite or DriverPostgres, derived from DATABASE_URL
	DatabasePath     string // SQLite file path
	DatabaseURL      string // Postgres connection string
	EncryptionKey    string
	EncryptionSalt   string
	GrowwAPIBase     string
	BrokerTimeout    time.Duration
	AuthHeaderPrefix string
	CORSOrigins      []string
	LogLevel         string
	Port             int
	DevMode          bool
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	dataDir, err := filepath.Abs(getEnv("AURA_DATA_DIR", "./data"))
	if err != nil {
		return nil, fmt.Errorf("failed to resolve data directory path: %w", err)
	}

	cfg := &Config{
		DataDir:          dataDir,
		EncryptionKey:    os.Getenv("ENCRYPTION_KEY"),
		EncryptionSalt:   os.Getenv("ENCRYPTION_SALT"),
		GrowwAPIBase:     strings.TrimRight(getEnv("GROWW_API_BASE", DefaultGrowwAPIBase), "/"),
		BrokerTimeout:    getEnvAsDuration("BROKER_TIMEOUT", 15*time.Second),
		AuthHeaderPrefix: getEnv("AUTH_HEADER_PREFIX", auth.DefaultHeaderPrefix),
		CORSOrigins:      getEnvAsList("CORS_ALLOWED_ORIGINS", []string{"*"}),
		LogLevel:         getEnv("LOG_LEVEL", "info"),
		Port:             getEnvAsInt("PORT", 8080),
		DevMode:          getEnvAsBool("DEV_MODE", false),
	}

	if err := cfg.resolveDatabase(getEnv("DATABASE_URL", "")); err != nil {
		return nil, err
	}

	// Validate required fields
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if cfg.DatabaseDriver == DriverSQLite {
		if err := os.MkdirAll(filepath.Dir(cfg.DatabasePath), 0755); err != nil {
			return nil, fmt.Errorf("failed to create data directory: %w", err)
		}
	}

	return cfg, nil
}

// resolveDatabase picks the driver from the connection string.
// Empty selects SQLite under the data directory.
func (c *Config) resolveDatabase(url string) error {
	switch {
	case url == "":
		c.DatabaseDriver = DriverSQLite
		c.DatabasePath = filepath.Join(c.DataDir, "aura.db")
	case strings.HasPrefix(url, "sqlite://"):
		c.DatabaseDriver = DriverSQLite
		path := strings.TrimPrefix(url, "sqlite://")
		if path == "" {
			path = filepath.Join(c.DataDir, "aura.db")
		}
		c.DatabasePath = path
	case strings.HasPrefix(url, "postgres://"), strings.HasPrefix(url, "postgresql://"):
		c.DatabaseDriver = DriverPostgres
		c.DatabaseURL = url
	default:
		return fmt.Errorf("%w: unsupported DATABASE_URL scheme", domain.ErrConfiguration)
	}
	return nil
}

// Validate checks if required configuration is present
func (c *Config) Validate() error {
	if c.EncryptionKey == "" || c.EncryptionSalt == "" {
		return fmt.Errorf("%w: ENCRYPTION_KEY and ENCRYPTION_SALT are required", domain.ErrConfiguration)
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("%w: invalid PORT %d", domain.ErrConfiguration, c.Port)
	}
	if c.BrokerTimeout <= 0 {
		return fmt.Errorf("%w: BROKER_TIMEOUT must be positive", domain.ErrConfiguration)
	}
	return nil
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func getEnvAsList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
