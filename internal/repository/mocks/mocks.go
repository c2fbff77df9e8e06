package mocks

import (
	"context"
	"time"

	"github.com/rpggio/merobase/internal/domain/activity"
	"github.com/rpggio/merobase/internal/repository"
	"github.com/stretchr/testify/mock"
)

// SlotRepository is a mock for sample.SlotRepository.
type SlotRepository struct {
	mock.Mock
}

func (m *SlotRepository) Get(ctx context.Context, key string) (repository.Slot, error) {
	args := m.Called(ctx, key)
	if slot, ok := args.Get(0).(repository.Slot); ok {
		return slot, args.Error(1)
	}
	return repository.Slot{}, args.Error(1)
}

func (m *SlotRepository) Put(ctx context.Context, key string, data []byte, expectedVersion string) (string, error) {
	args := m.Called(ctx, key, data, expectedVersion)
	return args.String(0), args.Error(1)
}

// ActivityRepository is a mock for activity.Repository.
type ActivityRepository struct {
	mock.Mock
}

func (m *ActivityRepository) Log(ctx context.Context, entry *activity.ActivityEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *ActivityRepository) List(ctx context.Context, opts activity.ListActivityOptions) ([]activity.ActivityEntry, error) {
	args := m.Called(ctx, opts)
	if list, ok := args.Get(0).([]activity.ActivityEntry); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

// MetricsRecorder is a mock for sample.MetricsRecorder.
type MetricsRecorder struct {
	mock.Mock
}

func (m *MetricsRecorder) Observe(operation string, err error, _ time.Duration) {
	m.Called(operation, err)
}

func (m *MetricsRecorder) SetSampleCount(n int) {
	m.Called(n)
}

func (m *MetricsRecorder) DocumentRecovered() {
	m.Called()
}
