package sample_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/rpggio/merobase/internal/domain/activity"
	"github.com/rpggio/merobase/internal/domain/sample"
	"github.com/rpggio/merobase/internal/memory"
	"github.com/rpggio/merobase/internal/repository"
	"github.com/rpggio/merobase/internal/repository/mocks"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// steppingClock returns a clock that advances one minute per call.
func steppingClock() func() time.Time {
	t := time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC)
	return func() time.Time {
		t = t.Add(time.Minute)
		return t
	}
}

func newTestService(t *testing.T, store *memory.SlotStore, opts ...sample.Option) (*sample.Service, *memory.ActivityLog) {
	t.Helper()
	log := memory.NewActivityLog()
	opts = append([]sample.Option{sample.WithClock(steppingClock())}, opts...)
	return sample.NewService(store, log, nil, opts...), log
}

func coral(projectNumber, sampleNumber int) sample.Candidate {
	return sample.Candidate{
		SampleName:     "Coral reef",
		Kingdom:        "Animalia",
		ProjectType:    "A",
		ProjectNumber:  intPtr(projectNumber),
		SampleNumber:   intPtr(sampleNumber),
		CollectionDate: "2024-01-10",
	}
}

func TestService_CreateThenRenameOnPhotoChange(t *testing.T) {
	ctx := context.Background()
	svc, log := newTestService(t, memory.NewSlotStore())

	created, err := svc.Create(ctx, coral(12, 3))
	require.NoError(t, err)
	require.Equal(t, "A12-3", created.SampleID)
	require.False(t, created.LastUpdated.IsZero())

	updated, err := svc.Update(ctx, "A12-3", sample.Patch{SEMPhoto: strPtr("sem.png")})
	require.NoError(t, err)
	require.Equal(t, "A12-3-SEM", updated.SampleID)
	require.True(t, updated.LastUpdated.After(created.LastUpdated))

	_, err = svc.Get(ctx, "A12-3")
	require.ErrorIs(t, err, sample.ErrNotFound)

	all, err := svc.List(ctx)
	require.NoError(t, err)
	require.Equal(t, []string{"A12-3-SEM"}, sampleIDs(all))

	renamed := activity.TypeSampleRenamed
	entries, err := log.List(ctx, activity.ListActivityOptions{ActivityType: &renamed})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	var details activity.RenameDetails
	require.NoError(t, json.Unmarshal([]byte(entries[0].Details), &details))
	require.Equal(t, activity.RenameDetails{PreviousID: "A12-3", NewID: "A12-3-SEM"}, details)
}

func TestService_CreateWithIsolatedPhoto(t *testing.T) {
	svc, _ := newTestService(t, memory.NewSlotStore())

	created, err := svc.Create(context.Background(), sample.Candidate{
		SampleName:    "Soil fungus",
		ProjectType:   "B",
		ProjectNumber: intPtr(1),
		SampleNumber:  intPtr(1),
		IsolatedPhoto: "iso.png",
	})
	require.NoError(t, err)
	require.Equal(t, "B1-1-ISO", created.SampleID)
	require.Equal(t, "2024-06-01", created.CollectionDate)
}

func TestService_SearchAfterCreate(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t, memory.NewSlotStore())

	_, err := svc.Create(ctx, coral(12, 3))
	require.NoError(t, err)
	kelp := coral(12, 4)
	kelp.SampleName = "Kelp"
	kelp.Kingdom = "Plantae"
	_, err = svc.Create(ctx, kelp)
	require.NoError(t, err)

	found, err := svc.Search(ctx, sample.Query{Text: "coral"})
	require.NoError(t, err)
	require.Equal(t, []string{"A12-3"}, sampleIDs(found))
}

func TestService_CreateRejectsInvalidCandidate(t *testing.T) {
	ctx := context.Background()
	store := memory.NewSlotStore()
	svc, _ := newTestService(t, store)

	_, err := svc.Create(ctx, sample.Candidate{ProjectType: "A", ProjectNumber: intPtr(1), SampleNumber: intPtr(1)})
	require.ErrorIs(t, err, sample.ErrValidation)

	_, err = svc.Create(ctx, sample.Candidate{SampleName: "No project"})
	require.ErrorIs(t, err, sample.ErrIdentifier)

	_, err = store.Get(ctx, sample.DefaultSlotKey)
	require.ErrorIs(t, err, repository.ErrNotFound)
}

func TestService_DuplicateIDPolicies(t *testing.T) {
	ctx := context.Background()

	reject, _ := newTestService(t, memory.NewSlotStore())
	_, err := reject.Create(ctx, coral(1, 1))
	require.NoError(t, err)
	_, err = reject.Create(ctx, coral(1, 1))
	require.ErrorIs(t, err, sample.ErrDuplicateID)

	all, err := reject.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)

	lenient, _ := newTestService(t, memory.NewSlotStore(), sample.WithCollisionPolicy(sample.CollisionDisambiguate))
	for _, want := range []string{"A1-1", "A1-1-2", "A1-1-3"} {
		created, err := lenient.Create(ctx, coral(1, 1))
		require.NoError(t, err)
		require.Equal(t, want, created.SampleID)
	}
}

func TestService_UpdateKeepsIDWhenInputsUnchanged(t *testing.T) {
	ctx := context.Background()
	svc, log := newTestService(t, memory.NewSlotStore())

	_, err := svc.Create(ctx, coral(5, 6))
	require.NoError(t, err)

	updated, err := svc.Update(ctx, "A5-6", sample.Patch{Species: strPtr("Porites"), Latitude: floatPtr(1), Longitude: floatPtr(2)})
	require.NoError(t, err)
	require.Equal(t, "A5-6", updated.SampleID)
	require.Equal(t, "Porites", updated.Species)

	cleared, err := svc.Update(ctx, "A5-6", sample.Patch{ClearLocation: true, Species: strPtr("")})
	require.NoError(t, err)
	require.Nil(t, cleared.Latitude)
	require.Empty(t, cleared.Species)

	renamed := activity.TypeSampleRenamed
	entries, err := log.List(ctx, activity.ListActivityOptions{ActivityType: &renamed})
	require.NoError(t, err)
	require.Empty(t, entries)
}

func TestService_UpdateErrorsLeaveCollectionUnchanged(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t, memory.NewSlotStore())

	before, err := svc.Create(ctx, coral(2, 2))
	require.NoError(t, err)

	_, err = svc.Update(ctx, "Z9-9", sample.Patch{SampleName: strPtr("x")})
	require.ErrorIs(t, err, sample.ErrNotFound)

	_, err = svc.Update(ctx, "A2-2", sample.Patch{SampleName: strPtr(""), Kingdom: strPtr("Monera")})
	var verr *sample.ValidationError
	require.ErrorAs(t, err, &verr)
	require.Len(t, verr.Violations, 2)

	after, err := svc.Get(ctx, "A2-2")
	require.NoError(t, err)
	require.Equal(t, before, after)
}

func TestService_UpdateRenameCollision(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t, memory.NewSlotStore())

	_, err := svc.Create(ctx, coral(3, 1))
	require.NoError(t, err)
	_, err = svc.Create(ctx, coral(3, 2))
	require.NoError(t, err)

	_, err = svc.Update(ctx, "A3-2", sample.Patch{SampleNumber: intPtr(1)})
	require.ErrorIs(t, err, sample.ErrDuplicateID)

	all, err := svc.List(ctx)
	require.NoError(t, err)
	require.Equal(t, []string{"A3-1", "A3-2"}, sampleIDs(all))
}

func TestService_PersistsAcrossInstances(t *testing.T) {
	ctx := context.Background()
	store := memory.NewSlotStore()
	first, _ := newTestService(t, store)

	_, err := first.Create(ctx, coral(12, 3))
	require.NoError(t, err)
	withCoords := coral(12, 4)
	withCoords.Latitude, withCoords.Longitude = floatPtr(-16.25), floatPtr(145.5)
	withCoords.SamplePhoto = "photo.jpg"
	_, err = first.Create(ctx, withCoords)
	require.NoError(t, err)

	want, err := first.List(ctx)
	require.NoError(t, err)

	second, _ := newTestService(t, store)
	got, err := second.List(ctx)
	require.NoError(t, err)
	require.Equal(t, want, got)
}

func TestService_ListReturnsCopies(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t, memory.NewSlotStore())

	c := coral(1, 2)
	c.Latitude, c.Longitude = floatPtr(1), floatPtr(2)
	_, err := svc.Create(ctx, c)
	require.NoError(t, err)

	all, err := svc.List(ctx)
	require.NoError(t, err)
	all[0].SampleName = "mutated"
	*all[0].Latitude = 50

	again, err := svc.Get(ctx, "A1-2")
	require.NoError(t, err)
	require.Equal(t, "Coral reef", again.SampleName)
	require.InDelta(t, 1.0, *again.Latitude, 0)
}

func TestService_ConcurrentWriterConflict(t *testing.T) {
	ctx := context.Background()
	store := memory.NewSlotStore()
	first, _ := newTestService(t, store)
	second, _ := newTestService(t, store)

	_, err := second.List(ctx)
	require.NoError(t, err)

	_, err = first.Create(ctx, coral(1, 1))
	require.NoError(t, err)

	_, err = second.Create(ctx, coral(1, 2))
	require.ErrorIs(t, err, sample.ErrConflict)

	stale, err := second.List(ctx)
	require.NoError(t, err)
	require.Empty(t, stale)

	require.NoError(t, second.Load(ctx))
	_, err = second.Create(ctx, coral(1, 2))
	require.NoError(t, err)

	all, err := first.List(ctx)
	require.NoError(t, err)
	require.Equal(t, []string{"A1-1"}, sampleIDs(all))
	require.NoError(t, first.Load(ctx))
	all, err = first.List(ctx)
	require.NoError(t, err)
	require.Equal(t, []string{"A1-1", "A1-2"}, sampleIDs(all))
}

func TestService_LoadRecoversFromCorruptDocument(t *testing.T) {
	ctx := context.Background()
	store := memory.NewSlotStore()
	store.Seed(sample.DefaultSlotKey, []byte("{not json"))

	metrics := &mocks.MetricsRecorder{}
	metrics.On("Observe", mock.Anything, mock.Anything).Return()
	metrics.On("SetSampleCount", mock.Anything).Return()
	metrics.On("DocumentRecovered").Return()

	svc, log := newTestService(t, store, sample.WithMetrics(metrics))
	require.NoError(t, svc.Load(ctx))

	all, err := svc.List(ctx)
	require.NoError(t, err)
	require.Empty(t, all)

	recovered := activity.TypeDocumentRecovered
	entries, err := log.List(ctx, activity.ListActivityOptions{ActivityType: &recovered})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	metrics.AssertCalled(t, "DocumentRecovered")
	metrics.AssertCalled(t, "Observe", "load", nil)

	_, err = svc.Create(ctx, coral(1, 1))
	require.NoError(t, err)

	slot, err := store.Get(ctx, sample.DefaultSlotKey)
	require.NoError(t, err)
	var persisted []sample.Sample
	require.NoError(t, json.Unmarshal(slot.Data, &persisted))
	require.Equal(t, []string{"A1-1"}, sampleIDs(persisted))
}

func TestService_LoadImportsLegacyDocument(t *testing.T) {
	ctx := context.Background()
	store := memory.NewSlotStore()
	store.Seed(sample.DefaultSlotKey, []byte(`[
		{"name": "Old coral", "projectType": "A", "projectNumber": "7", "sampleNumber": 2,
		 "location": "1.5, 2.5", "dateAcquired": "March 2019", "kingdom": "Monera"},
		{"sampleID": "X-1", "sampleName": "Loose", "projectNumber": "n/a"},
		{"species": "nameless"}
	]`))

	svc, _ := newTestService(t, store)
	all, err := svc.List(ctx)
	require.NoError(t, err)
	require.Equal(t, []string{"A7-2", "X-1"}, sampleIDs(all))

	old := all[0]
	require.Equal(t, "Old coral", old.SampleName)
	require.Equal(t, sample.KingdomUndecided, old.Kingdom)
	require.Equal(t, "March 2019", old.CollectionDate)
	require.InDelta(t, 1.5, *old.Latitude, 0)
	require.InDelta(t, 2.5, *old.Longitude, 0)
	require.Equal(t, "Loose", all[1].SampleName)
	require.Zero(t, all[1].ProjectNumber)
}

func TestService_SaveWritesEmptyDocument(t *testing.T) {
	ctx := context.Background()
	store := memory.NewSlotStore()
	svc, _ := newTestService(t, store)

	require.NoError(t, svc.Save(ctx))
	slot, err := store.Get(ctx, sample.DefaultSlotKey)
	require.NoError(t, err)
	require.JSONEq(t, `[]`, string(slot.Data))
}

func TestService_CustomSlotKey(t *testing.T) {
	ctx := context.Background()
	store := memory.NewSlotStore()
	svc, _ := newTestService(t, store, sample.WithSlotKey("lab_two"))

	_, err := svc.Create(ctx, coral(1, 1))
	require.NoError(t, err)

	_, err = store.Get(ctx, "lab_two")
	require.NoError(t, err)
	_, err = store.Get(ctx, sample.DefaultSlotKey)
	require.ErrorIs(t, err, repository.ErrNotFound)
}

func TestService_RecencyViews(t *testing.T) {
	ctx := context.Background()
	store := memory.NewSlotStore()
	svc, _ := newTestService(t, store)

	for n := 1; n <= 3; n++ {
		_, err := svc.Create(ctx, coral(1, n))
		require.NoError(t, err)
	}
	_, err := svc.Update(ctx, "A1-1", sample.Patch{Genus: strPtr("Acropora")})
	require.NoError(t, err)

	registered, err := svc.LatestRegistered(ctx, 2)
	require.NoError(t, err)
	require.Equal(t, []string{"A1-3", "A1-2"}, sampleIDs(registered))

	edited, err := svc.LatestEdited(ctx, 2)
	require.NoError(t, err)
	require.Equal(t, []string{"A1-1", "A1-3"}, sampleIDs(edited))

	legacy, _ := newTestService(t, store, sample.WithLegacyLatestEdited())
	positional, err := legacy.LatestEdited(ctx, 2)
	require.NoError(t, err)
	require.Equal(t, []string{"A1-2", "A1-1"}, sampleIDs(positional))
}

func TestService_StorageErrorsAreWrapped(t *testing.T) {
	ctx := context.Background()
	boom := errors.New("disk unavailable")

	slots := &mocks.SlotRepository{}
	slots.On("Get", ctx, sample.DefaultSlotKey).Return(nil, boom)

	svc := sample.NewService(slots, nil, nil)
	_, err := svc.List(ctx)
	require.ErrorIs(t, err, boom)
	slots.AssertExpectations(t)
}

func TestService_FailedWriteIsNotApplied(t *testing.T) {
	ctx := context.Background()
	boom := errors.New("quota exceeded")

	slots := &mocks.SlotRepository{}
	slots.On("Get", ctx, sample.DefaultSlotKey).Return(nil, repository.ErrNotFound)
	slots.On("Put", ctx, sample.DefaultSlotKey, mock.Anything, "").Return("", boom)

	activities := &mocks.ActivityRepository{}
	svc := sample.NewService(slots, activities, nil, sample.WithClock(steppingClock()))

	_, err := svc.Create(ctx, coral(1, 1))
	require.ErrorIs(t, err, boom)

	all, err := svc.List(ctx)
	require.NoError(t, err)
	require.Empty(t, all)
	activities.AssertNotCalled(t, "Log", mock.Anything, mock.Anything)
}

func TestService_UpdateRequiresIDInputsOnImportedRecord(t *testing.T) {
	ctx := context.Background()
	store := memory.NewSlotStore()
	store.Seed(sample.DefaultSlotKey, []byte(`[{"id": "MB-undefined-4", "name": "Old", "sampleNumber": "4"}]`))
	svc, log := newTestService(t, store)

	before, err := store.Get(ctx, sample.DefaultSlotKey)
	require.NoError(t, err)

	_, err = svc.Update(ctx, "MB-undefined-4", sample.Patch{SampleName: strPtr("Renamed")})
	require.ErrorIs(t, err, sample.ErrIdentifier)
	var idErr *sample.IdentifierError
	require.ErrorAs(t, err, &idErr)
	require.Equal(t, []string{"projectType", "projectNumber"}, idErr.Missing)

	after, err := store.Get(ctx, sample.DefaultSlotKey)
	require.NoError(t, err)
	require.Equal(t, before, after)
	kept, err := svc.Get(ctx, "MB-undefined-4")
	require.NoError(t, err)
	require.Equal(t, "Old", kept.SampleName)

	fixed, err := svc.Update(ctx, "MB-undefined-4", sample.Patch{
		SampleName:    strPtr("Renamed"),
		ProjectType:   strPtr("B"),
		ProjectNumber: intPtr(2),
	})
	require.NoError(t, err)
	require.Equal(t, "B2-4", fixed.SampleID)

	entries, err := log.List(ctx, activity.ListActivityOptions{SampleID: strPtr("B2-4")})
	require.NoError(t, err)
	require.Len(t, entries, 2)
}

func TestService_SaveAfterLoadKeepsDocumentBytes(t *testing.T) {
	ctx := context.Background()
	store := memory.NewSlotStore()
	first, _ := newTestService(t, store)

	withCoords := coral(12, 3)
	withCoords.Latitude, withCoords.Longitude = floatPtr(-16.25), floatPtr(145.5)
	withCoords.SamplePhoto = "photos/a12-3.jpg"
	withCoords.SEMPhoto = "sem/a12-3.png"
	withCoords.IsolatedPhoto = "iso/a12-3.png"
	withCoords.Species = "Acropora millepora"
	_, err := first.Create(ctx, withCoords)
	require.NoError(t, err)
	_, err = first.Create(ctx, coral(12, 4))
	require.NoError(t, err)

	before, err := store.Get(ctx, sample.DefaultSlotKey)
	require.NoError(t, err)

	second, _ := newTestService(t, store)
	require.NoError(t, second.Load(ctx))
	require.NoError(t, second.Save(ctx))

	after, err := store.Get(ctx, sample.DefaultSlotKey)
	require.NoError(t, err)
	require.Equal(t, string(before.Data), string(after.Data))
}
