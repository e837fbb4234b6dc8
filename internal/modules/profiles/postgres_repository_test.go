package profiles

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shubhams167/aura/internal/domain"
	testingpkg "github.com/shubhams167/aura/internal/testing"
)

func TestPostgresRepository_UpsertThenGet(t *testing.T) {
	db := testingpkg.NewTestPostgres(t)
	repo := NewPostgresRepository(db.Pool(), zerolog.Nop())
	ctx := context.Background()

	missing, err := repo.Get(ctx, "u-1")
	require.NoError(t, err)
	assert.Nil(t, missing)

	created, err := repo.Upsert(ctx, domain.Principal{ID: "u-1", Email: "a@example.com", Name: "A"})
	require.NoError(t, err)
	assert.Equal(t, domain.UserIdentity("u-1"), created.ID)
	assert.Equal(t, "a@example.com", created.Email)
	assert.Equal(t, "A", created.Name)
	assert.Empty(t, created.Image)
	assert.False(t, created.CreatedAt.IsZero())

	updated, err := repo.Upsert(ctx, domain.Principal{ID: "u-1", Email: "a@example.com", Name: "Alice", Image: "https://img"})
	require.NoError(t, err)
	assert.Equal(t, "Alice", updated.Name)
	assert.Equal(t, "https://img", updated.Image)
	assert.True(t, created.CreatedAt.Equal(updated.CreatedAt), "created_at survives refresh")
	assert.False(t, updated.UpdatedAt.Before(created.UpdatedAt))

	got, err := repo.Get(ctx, "u-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Alice", got.Name)
	assert.True(t, updated.UpdatedAt.Equal(got.UpdatedAt))
}

func TestPostgresRepository_NullNameAndImage(t *testing.T) {
	db := testingpkg.NewTestPostgres(t)
	repo := NewPostgresRepository(db.Pool(), zerolog.Nop())
	ctx := context.Background()

	_, err := db.Pool().Exec(ctx, "INSERT INTO user_profiles (id, email) VALUES ('u-2', 'b@example.com')")
	require.NoError(t, err)

	got, err := repo.Get(ctx, "u-2")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Empty(t, got.Name)
	assert.Empty(t, got.Image)
}

func TestPostgresRepository_DuplicateEmail(t *testing.T) {
	db := testingpkg.NewTestPostgres(t)
	repo := NewPostgresRepository(db.Pool(), zerolog.Nop())
	ctx := context.Background()

	_, err := repo.Upsert(ctx, domain.Principal{ID: "u-1", Email: "same@example.com"})
	require.NoError(t, err)

	_, err = repo.Upsert(ctx, domain.Principal{ID: "u-2", Email: "same@example.com"})
	assert.ErrorIs(t, err, domain.ErrStore)
}

func TestPostgresRepository_WithService(t *testing.T) {
	db := testingpkg.NewTestPostgres(t)
	svc := NewService(NewPostgresRepository(db.Pool(), zerolog.Nop()), zerolog.Nop())

	p, err := svc.RecordSignIn(context.Background(), domain.Principal{ID: "u-3", Email: " c@example.com "})
	require.NoError(t, err)
	assert.Equal(t, "c@example.com", p.Email)
}
