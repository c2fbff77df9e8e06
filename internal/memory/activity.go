package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/rpggio/merobase/internal/domain/activity"
)

const defaultActivityLimit = 50

// ActivityLog keeps activity entries in memory.
type ActivityLog struct {
	mu      sync.Mutex
	entries []activity.ActivityEntry
}

// NewActivityLog returns an empty log.
func NewActivityLog() *ActivityLog {
	return &ActivityLog{}
}

func (l *ActivityLog) Log(ctx context.Context, entry *activity.ActivityEntry) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, *entry)
	return nil
}

// List returns matching entries newest first.
func (l *ActivityLog) List(ctx context.Context, opts activity.ListActivityOptions) ([]activity.ActivityEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]activity.ActivityEntry, 0, len(l.entries))
	for i := len(l.entries) - 1; i >= 0; i-- {
		e := l.entries[i]
		if opts.SampleID != nil && (e.SampleID == nil || *e.SampleID != *opts.SampleID) {
			continue
		}
		if opts.ActivityType != nil && e.ActivityType != *opts.ActivityType {
			continue
		}
		out = append(out, e)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})

	limit := opts.Limit
	if limit <= 0 {
		limit = defaultActivityLimit
	}
	if opts.Offset >= len(out) {
		return []activity.ActivityEntry{}, nil
	}
	out = out[opts.Offset:]
	if limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}
