package credentials

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shubhams167/aura/internal/domain"
	testingpkg "github.com/shubhams167/aura/internal/testing"
)

func setupRepo(t *testing.T) (*Repository, func()) {
	t.Helper()
	db, cleanup := testingpkg.NewTestDB(t, "aura")
	testingpkg.SeedProfile(t, db, "user-1", "one@example.com")
	testingpkg.SeedProfile(t, db, "user-2", "two@example.com")
	return NewRepository(db.Conn(), zerolog.Nop()), cleanup
}

func sampleCreds(tag string) domain.EncryptedCredentials {
	return domain.EncryptedCredentials{
		EncryptedAPIKey:    "aa" + tag + ":bb",
		EncryptedAPISecret: "cc" + tag + ":dd",
		IV:                 "iv-" + tag,
		IVSecret:           "ivs-" + tag,
	}
}

func TestRepository_UpsertAndFind(t *testing.T) {
	repo, cleanup := setupRepo(t)
	defer cleanup()
	ctx := context.Background()

	require.NoError(t, repo.Upsert(ctx, "user-1", domain.BrokerGroww, sampleCreds("1")))

	rec, err := repo.Find(ctx, "user-1", domain.BrokerGroww)
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.NotEmpty(t, rec.ID)
	assert.Equal(t, domain.UserIdentity("user-1"), rec.UserID)
	assert.Equal(t, domain.BrokerGroww, rec.Broker)
	assert.Equal(t, sampleCreds("1"), rec.EncryptedCredentials)
	assert.False(t, rec.CreatedAt.IsZero())
}

func TestRepository_FindMissing(t *testing.T) {
	repo, cleanup := setupRepo(t)
	defer cleanup()

	rec, err := repo.Find(context.Background(), "user-1", domain.BrokerZerodha)
	require.NoError(t, err)
	assert.Nil(t, rec)
}

func TestRepository_UpsertReplacesInPlace(t *testing.T) {
	repo, cleanup := setupRepo(t)
	defer cleanup()
	ctx := context.Background()

	created := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	repo.now = func() time.Time { return created }
	require.NoError(t, repo.Upsert(ctx, "user-1", domain.BrokerGroww, sampleCreds("1")))
	first, err := repo.Find(ctx, "user-1", domain.BrokerGroww)
	require.NoError(t, err)

	updated := created.Add(time.Hour)
	repo.now = func() time.Time { return updated }
	require.NoError(t, repo.Upsert(ctx, "user-1", domain.BrokerGroww, sampleCreds("2")))

	second, err := repo.Find(ctx, "user-1", domain.BrokerGroww)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID, "id survives update")
	assert.True(t, created.Equal(second.CreatedAt), "created_at survives update")
	assert.True(t, updated.Equal(second.UpdatedAt))
	assert.Equal(t, sampleCreds("2"), second.EncryptedCredentials)

	all, err := repo.ListForUser(ctx, "user-1")
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestRepository_ListForUser_IsolatedPerUser(t *testing.T) {
	repo, cleanup := setupRepo(t)
	defer cleanup()
	ctx := context.Background()

	require.NoError(t, repo.Upsert(ctx, "user-1", domain.BrokerGroww, sampleCreds("g")))
	require.NoError(t, repo.Upsert(ctx, "user-1", domain.BrokerUpstox, sampleCreds("u")))
	require.NoError(t, repo.Upsert(ctx, "user-2", domain.BrokerGroww, sampleCreds("x")))

	recs, err := repo.ListForUser(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, recs, 2)
	for _, rec := range recs {
		assert.Equal(t, domain.UserIdentity("user-1"), rec.UserID)
	}

	none, err := repo.ListForUser(ctx, "nobody")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestRepository_DeleteIsIdempotent(t *testing.T) {
	repo, cleanup := setupRepo(t)
	defer cleanup()
	ctx := context.Background()

	require.NoError(t, repo.Upsert(ctx, "user-1", domain.BrokerGroww, sampleCreds("1")))
	require.NoError(t, repo.Delete(ctx, "user-1", domain.BrokerGroww))
	require.NoError(t, repo.Delete(ctx, "user-1", domain.BrokerGroww))

	rec, err := repo.Find(ctx, "user-1", domain.BrokerGroww)
	require.NoError(t, err)
	assert.Nil(t, rec)
}

func TestRepository_ConcurrentUpsertKeepsOneRow(t *testing.T) {
	repo, cleanup := setupRepo(t)
	defer cleanup()
	ctx := context.Background()

	var wg sync.WaitGroup
	errs := make(chan error, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs <- repo.Upsert(ctx, "user-1", domain.BrokerGroww, sampleCreds(fmt.Sprint(i)))
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	recs, err := repo.ListForUser(ctx, "user-1")
	require.NoError(t, err)
	assert.Len(t, recs, 1)
}

func TestRepository_UnknownUserViolatesForeignKey(t *testing.T) {
	repo, cleanup := setupRepo(t)
	defer cleanup()

	err := repo.Upsert(context.Background(), "ghost", domain.BrokerGroww, sampleCreds("1"))
	assert.ErrorIs(t, err, domain.ErrStore)
}

func TestRepository_ProfileDeleteCascades(t *testing.T) {
	db, cleanup := testingpkg.NewTestDB(t, "aura")
	defer cleanup()
	testingpkg.SeedProfile(t, db, "user-1", "one@example.com")
	repo := NewRepository(db.Conn(), zerolog.Nop())
	ctx := context.Background()

	require.NoError(t, repo.Upsert(ctx, "user-1", domain.BrokerGroww, sampleCreds("1")))

	_, err := db.Conn().ExecContext(ctx, "DELETE FROM user_profiles WHERE id = ?", "user-1")
	require.NoError(t, err)

	rec, err := repo.Find(ctx, "user-1", domain.BrokerGroww)
	require.NoError(t, err)
	assert.Nil(t, rec)
}

func TestRepository_ClosedDatabaseIsStoreError(t *testing.T) {
	repo, cleanup := setupRepo(t)
	cleanup()

	_, err := repo.Find(context.Background(), "user-1", domain.BrokerGroww)
	assert.ErrorIs(t, err, domain.ErrStore)
}
