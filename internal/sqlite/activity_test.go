package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/rpggio/merobase/internal/domain/activity"
	"github.com/stretchr/testify/require"
)

func TestActivityRepository_LogList(t *testing.T) {
	db := NewTestDB(t)
	ctx := context.Background()

	repo := NewActivityRepository(db)
	sampleID := "A12-3"
	entry1 := &activity.ActivityEntry{
		ID:           "e1",
		SampleID:     &sampleID,
		ActivityType: activity.TypeSampleCreated,
		Summary:      "created sample A12-3",
	}
	entry2 := &activity.ActivityEntry{
		ID:           "e2",
		SampleID:     &sampleID,
		ActivityType: activity.TypeSampleUpdated,
		Summary:      "updated sample A12-3",
		Details:      `{"field":"species"}`,
	}

	require.NoError(t, repo.Log(ctx, entry1))
	time.Sleep(10 * time.Millisecond)
	require.NoError(t, repo.Log(ctx, entry2))
	require.False(t, entry1.CreatedAt.IsZero())

	entries, err := repo.List(ctx, activity.ListActivityOptions{})
	require.NoError(t, err)
	require.Len(t, entries, 2)
	require.Equal(t, "e2", entries[0].ID)
	require.Equal(t, entry2.Details, entries[0].Details)
	require.Equal(t, "e1", entries[1].ID)
	require.Equal(t, sampleID, *entries[1].SampleID)
}

func TestActivityRepository_Filters(t *testing.T) {
	db := NewTestDB(t)
	ctx := context.Background()
	repo := NewActivityRepository(db)

	a, b := "A1-1", "B1-1"
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, repo.Log(ctx, &activity.ActivityEntry{ID: "1", SampleID: &a, ActivityType: activity.TypeSampleCreated, Summary: "c", CreatedAt: base}))
	require.NoError(t, repo.Log(ctx, &activity.ActivityEntry{ID: "2", SampleID: &b, ActivityType: activity.TypeSampleCreated, Summary: "c", CreatedAt: base.Add(time.Second)}))
	require.NoError(t, repo.Log(ctx, &activity.ActivityEntry{ID: "3", ActivityType: activity.TypeDocumentRecovered, Summary: "r", CreatedAt: base.Add(2 * time.Second)}))

	forA, err := repo.List(ctx, activity.ListActivityOptions{SampleID: &a})
	require.NoError(t, err)
	require.Len(t, forA, 1)
	require.Equal(t, "1", forA[0].ID)

	recovered := activity.TypeDocumentRecovered
	onlyRecovered, err := repo.List(ctx, activity.ListActivityOptions{ActivityType: &recovered})
	require.NoError(t, err)
	require.Len(t, onlyRecovered, 1)
	require.Nil(t, onlyRecovered[0].SampleID)

	page, err := repo.List(ctx, activity.ListActivityOptions{Limit: 1, Offset: 1})
	require.NoError(t, err)
	require.Len(t, page, 1)
	require.Equal(t, "2", page[0].ID)

	tail, err := repo.List(ctx, activity.ListActivityOptions{Offset: 2})
	require.NoError(t, err)
	require.Len(t, tail, 1)
	require.Equal(t, "1", tail[0].ID)
}
