package di

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shubhams167/aura/internal/config"
	"github.com/shubhams167/aura/internal/domain"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	tmpDir := t.TempDir()
	return &config.Config{
		DataDir:        tmpDir,
		DatabaseDriver: config.DriverSQLite,
		DatabasePath:   filepath.Join(tmpDir, "aura.db"),
		EncryptionKey:  "test-passphrase",
		EncryptionSalt: "test-salt",
		GrowwAPIBase:   "http://127.0.0.1:1",
		BrokerTimeout:  time.Second,
		Port:           8080,
	}
}

func TestWire(t *testing.T) {
	container, err := Wire(context.Background(), testConfig(t), zerolog.Nop())
	require.NoError(t, err)
	require.NotNil(t, container)
	t.Cleanup(func() { container.Close() })

	// Verify container is fully populated
	assert.NotNil(t, container.SQLiteDB)
	assert.Nil(t, container.PostgresDB)
	assert.NotNil(t, container.CredentialStore)
	assert.NotNil(t, container.ProfileStore)
	assert.NotNil(t, container.Cipher)
	assert.NotNil(t, container.Metrics)
	assert.NotNil(t, container.BrokerService)
	assert.NotNil(t, container.ProfileService)
	assert.Equal(t, "sqlite", container.DatabaseDriver())
	assert.NoError(t, container.DB().QuickCheck(context.Background()))

	for _, kind := range domain.AllBrokerKinds() {
		client, err := container.BrokerRegistry.ClientFor(kind)
		require.NoError(t, err)
		assert.NotNil(t, client)
	}
}

func TestWire_MissingEncryptionKey(t *testing.T) {
	cfg := testConfig(t)
	cfg.EncryptionKey = ""

	container, err := Wire(context.Background(), cfg, zerolog.Nop())
	assert.Nil(t, container)
	assert.ErrorIs(t, err, domain.ErrConfiguration)
}

func TestWire_ProfileThenCredentials(t *testing.T) {
	container, err := Wire(context.Background(), testConfig(t), zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { container.Close() })

	ctx := context.Background()
	_, err = container.ProfileService.RecordSignIn(ctx, domain.Principal{ID: "u-1", Email: "u1@example.com"})
	require.NoError(t, err)

	creds, err := container.Cipher.EncryptCredentialPair("key", "secret")
	require.NoError(t, err)
	require.NoError(t, container.CredentialStore.Upsert(ctx, "u-1", domain.BrokerGroww, *creds))

	rec, err := container.CredentialStore.Find(ctx, "u-1", domain.BrokerGroww)
	require.NoError(t, err)
	require.NotNil(t, rec)

	apiKey, apiSecret, err := container.Cipher.DecryptCredentialPair(rec.EncryptedCredentials)
	require.NoError(t, err)
	assert.Equal(t, "key", apiKey)
	assert.Equal(t, "secret", apiSecret)
}
