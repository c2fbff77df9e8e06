package sqlite

import (
	"context"
	"testing"

	"github.com/rpggio/merobase/internal/repository"
	"github.com/stretchr/testify/require"
)

func TestSlotRepository_CreateAndGet(t *testing.T) {
	db := NewTestDB(t)
	ctx := context.Background()
	repo := NewSlotRepository(db)

	_, err := repo.Get(ctx, "mero_samples")
	require.ErrorIs(t, err, repository.ErrNotFound)

	version, err := repo.Put(ctx, "mero_samples", []byte(`[]`), "")
	require.NoError(t, err)
	require.Equal(t, "1", version)

	slot, err := repo.Get(ctx, "mero_samples")
	require.NoError(t, err)
	require.Equal(t, `[]`, string(slot.Data))
	require.Equal(t, "1", slot.Version)
}

func TestSlotRepository_OptimisticConcurrency(t *testing.T) {
	db := NewTestDB(t)
	ctx := context.Background()
	repo := NewSlotRepository(db)

	v1, err := repo.Put(ctx, "k", []byte("one"), "")
	require.NoError(t, err)

	_, err = repo.Put(ctx, "k", []byte("dup"), "")
	require.ErrorIs(t, err, repository.ErrConflict)

	v2, err := repo.Put(ctx, "k", []byte("two"), v1)
	require.NoError(t, err)
	require.Equal(t, "2", v2)

	_, err = repo.Put(ctx, "k", []byte("stale"), v1)
	require.ErrorIs(t, err, repository.ErrConflict)

	_, err = repo.Put(ctx, "missing", []byte("x"), "3")
	require.ErrorIs(t, err, repository.ErrConflict)

	_, err = repo.Put(ctx, "k", []byte("x"), "not-a-number")
	require.ErrorIs(t, err, repository.ErrConflict)

	slot, err := repo.Get(ctx, "k")
	require.NoError(t, err)
	require.Equal(t, "two", string(slot.Data))
}

func TestSlotRepository_KeysAreIndependent(t *testing.T) {
	db := NewTestDB(t)
	ctx := context.Background()
	repo := NewSlotRepository(db)

	_, err := repo.Put(ctx, "a", []byte("A"), "")
	require.NoError(t, err)
	_, err = repo.Put(ctx, "b", []byte("B"), "")
	require.NoError(t, err)

	a, err := repo.Get(ctx, "a")
	require.NoError(t, err)
	require.Equal(t, "A", string(a.Data))

	_, err = repo.Put(ctx, "", []byte("x"), "")
	require.ErrorIs(t, err, repository.ErrInvalidInput)
}
