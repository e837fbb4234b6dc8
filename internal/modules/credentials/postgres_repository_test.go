package credentials

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shubhams167/aura/internal/database"
	"github.com/shubhams167/aura/internal/domain"
	testingpkg "github.com/shubhams167/aura/internal/testing"
)

// startPostgres returns a migrated Postgres with two seeded profiles
func startPostgres(t *testing.T) *database.PostgresDB {
	t.Helper()
	db := testingpkg.NewTestPostgres(t)

	_, err := db.Pool().Exec(context.Background(),
		"INSERT INTO user_profiles (id, email) VALUES ('user-1', 'one@example.com'), ('user-2', 'two@example.com')")
	require.NoError(t, err)

	return db
}

func TestPostgresRepository_Lifecycle(t *testing.T) {
	db := startPostgres(t)
	repo := NewPostgresRepository(db.Pool(), zerolog.Nop())
	ctx := context.Background()

	require.NoError(t, repo.Upsert(ctx, "user-1", domain.BrokerGroww, sampleCreds("1")))
	first, err := repo.Find(ctx, "user-1", domain.BrokerGroww)
	require.NoError(t, err)
	require.NotNil(t, first)
	assert.Equal(t, sampleCreds("1"), first.EncryptedCredentials)

	require.NoError(t, repo.Upsert(ctx, "user-1", domain.BrokerGroww, sampleCreds("2")))
	second, err := repo.Find(ctx, "user-1", domain.BrokerGroww)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.True(t, first.CreatedAt.Equal(second.CreatedAt))
	assert.Equal(t, sampleCreds("2"), second.EncryptedCredentials)

	require.NoError(t, repo.Upsert(ctx, "user-1", domain.BrokerZerodha, sampleCreds("z")))
	require.NoError(t, repo.Upsert(ctx, "user-2", domain.BrokerGroww, sampleCreds("x")))

	recs, err := repo.ListForUser(ctx, "user-1")
	require.NoError(t, err)
	assert.Len(t, recs, 2)

	require.NoError(t, repo.Delete(ctx, "user-1", domain.BrokerGroww))
	require.NoError(t, repo.Delete(ctx, "user-1", domain.BrokerGroww))
	gone, err := repo.Find(ctx, "user-1", domain.BrokerGroww)
	require.NoError(t, err)
	assert.Nil(t, gone)

	_, err = db.Pool().Exec(ctx, "DELETE FROM user_profiles WHERE id = 'user-2'")
	require.NoError(t, err)
	recs, err = repo.ListForUser(ctx, "user-2")
	require.NoError(t, err)
	assert.Empty(t, recs)
}

func TestPostgresRepository_UnknownUser(t *testing.T) {
	db := startPostgres(t)
	repo := NewPostgresRepository(db.Pool(), zerolog.Nop())

	err := repo.Upsert(context.Background(), "ghost", domain.BrokerGroww, sampleCreds("1"))
	assert.ErrorIs(t, err, domain.ErrStore)
}
