package memory_test

import (
	"context"
	"testing"
	"time"

	"github.com/rpggio/merobase/internal/domain/activity"
	"github.com/rpggio/merobase/internal/memory"
	"github.com/rpggio/merobase/internal/repository"
	"github.com/stretchr/testify/require"
)

func TestSlotStore_PutGetVersioning(t *testing.T) {
	ctx := context.Background()
	store := memory.NewSlotStore()

	_, err := store.Get(ctx, "k")
	require.ErrorIs(t, err, repository.ErrNotFound)

	v1, err := store.Put(ctx, "k", []byte("one"), "")
	require.NoError(t, err)

	_, err = store.Put(ctx, "k", []byte("again"), "")
	require.ErrorIs(t, err, repository.ErrConflict)

	v2, err := store.Put(ctx, "k", []byte("two"), v1)
	require.NoError(t, err)
	require.NotEqual(t, v1, v2)

	_, err = store.Put(ctx, "k", []byte("stale"), v1)
	require.ErrorIs(t, err, repository.ErrConflict)

	slot, err := store.Get(ctx, "k")
	require.NoError(t, err)
	require.Equal(t, "two", string(slot.Data))
	require.Equal(t, v2, slot.Version)
}

func TestSlotStore_GetReturnsCopy(t *testing.T) {
	ctx := context.Background()
	store := memory.NewSlotStore()
	store.Seed("k", []byte("abc"))

	slot, err := store.Get(ctx, "k")
	require.NoError(t, err)
	slot.Data[0] = 'x'

	again, err := store.Get(ctx, "k")
	require.NoError(t, err)
	require.Equal(t, "abc", string(again.Data))
}

func TestActivityLog_ListFiltersNewestFirst(t *testing.T) {
	ctx := context.Background()
	log := memory.NewActivityLog()
	a, b := "A1-1", "B1-1"
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	require.NoError(t, log.Log(ctx, &activity.ActivityEntry{ID: "1", SampleID: &a, ActivityType: activity.TypeSampleCreated, CreatedAt: base}))
	require.NoError(t, log.Log(ctx, &activity.ActivityEntry{ID: "2", SampleID: &b, ActivityType: activity.TypeSampleCreated, CreatedAt: base.Add(time.Minute)}))
	require.NoError(t, log.Log(ctx, &activity.ActivityEntry{ID: "3", SampleID: &a, ActivityType: activity.TypeSampleUpdated, CreatedAt: base.Add(2 * time.Minute)}))

	all, err := log.List(ctx, activity.ListActivityOptions{})
	require.NoError(t, err)
	require.Equal(t, []string{"3", "2", "1"}, ids(all))

	forA, err := log.List(ctx, activity.ListActivityOptions{SampleID: &a})
	require.NoError(t, err)
	require.Equal(t, []string{"3", "1"}, ids(forA))

	created := activity.TypeSampleCreated
	page, err := log.List(ctx, activity.ListActivityOptions{ActivityType: &created, Limit: 1, Offset: 1})
	require.NoError(t, err)
	require.Equal(t, []string{"1"}, ids(page))
}

func ids(entries []activity.ActivityEntry) []string {
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.ID)
	}
	return out
}
