// Package memory provides in-process implementations of the repository ports.
package memory

import (
	"context"
	"strconv"
	"sync"

	"github.com/rpggio/merobase/internal/repository"
)

// SlotStore keeps slots in a map. Versions are per-store write counters.
type SlotStore struct {
	mu    sync.Mutex
	slots map[string]repository.Slot
	seq   int64
}

// NewSlotStore returns an empty store.
func NewSlotStore() *SlotStore {
	return &SlotStore{slots: map[string]repository.Slot{}}
}

// Get returns a copy of the slot stored under key.
func (s *SlotStore) Get(ctx context.Context, key string) (repository.Slot, error) {
	if err := ctx.Err(); err != nil {
		return repository.Slot{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	slot, ok := s.slots[key]
	if !ok {
		return repository.Slot{}, repository.ErrNotFound
	}
	return repository.Slot{Data: append([]byte(nil), slot.Data...), Version: slot.Version}, nil
}

// Put replaces the slot when its version matches expectedVersion.
func (s *SlotStore) Put(ctx context.Context, key string, data []byte, expectedVersion string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if key == "" {
		return "", repository.ErrInvalidInput
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.slots[key].Version != expectedVersion {
		return "", repository.ErrConflict
	}
	s.seq++
	version := strconv.FormatInt(s.seq, 10)
	s.slots[key] = repository.Slot{Data: append([]byte(nil), data...), Version: version}
	return version, nil
}

// Seed stores data under key unconditionally. It is meant for tests and
// fixtures.
func (s *SlotStore) Seed(key string, data []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	s.slots[key] = repository.Slot{Data: append([]byte(nil), data...), Version: strconv.FormatInt(s.seq, 10)}
}
