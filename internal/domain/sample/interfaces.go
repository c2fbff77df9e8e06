package sample

import (
	"context"
	"time"

	"github.com/rpggio/merobase/internal/domain/activity"
	"github.com/rpggio/merobase/internal/repository"
)

// SlotRepository is the single-slot key-value surface the sample document is
// persisted to.
type SlotRepository interface {
	// Get returns repository.ErrNotFound when the slot is absent.
	Get(ctx context.Context, key string) (repository.Slot, error)
	// Put replaces the slot if its current version equals expectedVersion
	// ("" means the slot must not exist yet) and returns the new version.
	// A mismatch returns repository.ErrConflict.
	Put(ctx context.Context, key string, data []byte, expectedVersion string) (string, error)
}

// ActivityRepository logs sample activities.
type ActivityRepository interface {
	Log(ctx context.Context, entry *activity.ActivityEntry) error
}

// MetricsRecorder receives operation outcomes.
type MetricsRecorder interface {
	Observe(operation string, err error, elapsed time.Duration)
	SetSampleCount(n int)
	DocumentRecovered()
}
