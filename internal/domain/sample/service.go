package sample

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/rpggio/merobase/internal/domain/activity"
	"github.com/rpggio/merobase/internal/repository"
)

// Service is the record store for samples. It keeps the ordered collection in
// memory and writes the whole collection back to its slot after every
// mutation.
type Service struct {
	slots      SlotRepository
	activities ActivityRepository
	metrics    MetricsRecorder
	logger     *slog.Logger

	key                string
	now                func() time.Time
	collisions         CollisionPolicy
	legacyLatestEdited bool

	mu      sync.Mutex
	loaded  bool
	samples []Sample
	index   map[string]int
	version string
}

// NewService creates a new sample service. activities may be nil.
func NewService(slots SlotRepository, activities ActivityRepository, logger *slog.Logger, opts ...Option) *Service {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	s := &Service{
		slots:      slots,
		activities: activities,
		logger:     logger,
		key:        DefaultSlotKey,
		now:        time.Now,
		collisions: CollisionReject,
		index:      map[string]int{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load replaces the in-memory collection with the persisted document. A
// missing slot yields an empty collection; so does a corrupt document, which
// is logged and otherwise ignored.
func (s *Service) Load(ctx context.Context) (err error) {
	defer s.observe("load", time.Now(), &err)

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadLocked(ctx)
}

// Save writes the current collection to the slot.
func (s *Service) Save(ctx context.Context) (err error) {
	defer s.observe("save", time.Now(), &err)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureLoaded(ctx); err != nil {
		return err
	}
	return s.persist(ctx, s.samples)
}

// List returns every sample in registration order.
func (s *Service) List(ctx context.Context) ([]Sample, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureLoaded(ctx); err != nil {
		return nil, err
	}
	return cloneAll(s.samples), nil
}

// Get returns the sample with the given ID.
func (s *Service) Get(ctx context.Context, id string) (Sample, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureLoaded(ctx); err != nil {
		return Sample{}, err
	}
	idx, ok := s.index[id]
	if !ok {
		return Sample{}, &NotFoundError{SampleID: id}
	}
	return s.samples[idx].clone(), nil
}

// Validate runs the schema check using the service clock.
func (s *Service) Validate(c Candidate) (Sample, error) {
	return Validate(c, s.now())
}

// Create validates the candidate, derives its ID, appends it to the
// collection and persists the collection.
func (s *Service) Create(ctx context.Context, c Candidate) (_ Sample, err error) {
	defer s.observe("create", time.Now(), &err)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureLoaded(ctx); err != nil {
		return Sample{}, err
	}

	now := s.now()
	rec, err := Validate(c, now)
	if err != nil {
		return Sample{}, err
	}
	id, err := GenerateID(rec.IDInputs())
	if err != nil {
		return Sample{}, err
	}
	id, err = s.claimID(id, -1)
	if err != nil {
		return Sample{}, err
	}
	rec.SampleID = id
	rec.LastUpdated = now.UTC()

	next := make([]Sample, len(s.samples), len(s.samples)+1)
	copy(next, s.samples)
	next = append(next, rec)
	if err := s.persist(ctx, next); err != nil {
		return Sample{}, err
	}

	s.logActivity(ctx, &activity.ActivityEntry{
		SampleID:     &rec.SampleID,
		ActivityType: activity.TypeSampleCreated,
		Summary:      fmt.Sprintf("created sample %s", rec.SampleID),
	})
	s.logger.Debug("sample created", "sample_id", rec.SampleID)

	return rec.clone(), nil
}

// Update merges patch onto the sample with the given ID. The merged sample
// must carry every ID input. The ID is derived again when any of its inputs
// changed, and the old ID disappears from the collection.
func (s *Service) Update(ctx context.Context, id string, patch Patch) (_ Sample, err error) {
	defer s.observe("update", time.Now(), &err)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureLoaded(ctx); err != nil {
		return Sample{}, err
	}

	idx, ok := s.index[id]
	if !ok {
		return Sample{}, &NotFoundError{SampleID: id}
	}
	current := s.samples[idx]

	now := s.now()
	rec, err := Validate(patch.Apply(CandidateOf(current)), now)
	if err != nil {
		return Sample{}, err
	}

	// Imported records may lack ID inputs; they cannot be written back until
	// the inputs are complete.
	newID, err := GenerateID(rec.IDInputs())
	if err != nil {
		return Sample{}, err
	}
	rec.SampleID = current.SampleID
	if rec.IDInputs() != current.IDInputs() {
		if rec.SampleID, err = s.claimID(newID, idx); err != nil {
			return Sample{}, err
		}
	}
	rec.LastUpdated = now.UTC()

	next := make([]Sample, len(s.samples))
	copy(next, s.samples)
	next[idx] = rec
	if err := s.persist(ctx, next); err != nil {
		return Sample{}, err
	}

	s.logActivity(ctx, &activity.ActivityEntry{
		SampleID:     &rec.SampleID,
		ActivityType: activity.TypeSampleUpdated,
		Summary:      fmt.Sprintf("updated sample %s", rec.SampleID),
	})
	if rec.SampleID != current.SampleID {
		details, _ := json.Marshal(activity.RenameDetails{PreviousID: current.SampleID, NewID: rec.SampleID})
		s.logActivity(ctx, &activity.ActivityEntry{
			SampleID:     &rec.SampleID,
			ActivityType: activity.TypeSampleRenamed,
			Summary:      fmt.Sprintf("renamed sample %s to %s", current.SampleID, rec.SampleID),
			Details:      string(details),
		})
		s.logger.Info("sample renamed", "previous_id", current.SampleID, "sample_id", rec.SampleID)
	}

	return rec.clone(), nil
}

// Search filters the collection by q.
func (s *Service) Search(ctx context.Context, q Query) ([]Sample, error) {
	samples, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	return Filter(samples, q)
}

// LatestRegistered returns the n most recently registered samples.
func (s *Service) LatestRegistered(ctx context.Context, n int) ([]Sample, error) {
	samples, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	return LatestRegistered(samples, n), nil
}

// LatestEdited returns the n most recently edited samples.
func (s *Service) LatestEdited(ctx context.Context, n int) ([]Sample, error) {
	samples, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	if s.legacyLatestEdited {
		return LatestEditedPositional(samples, n), nil
	}
	return LatestEdited(samples, n), nil
}

func (s *Service) ensureLoaded(ctx context.Context) error {
	if s.loaded {
		return nil
	}
	return s.loadLocked(ctx)
}

func (s *Service) loadLocked(ctx context.Context) error {
	slot, err := s.slots.Get(ctx, s.key)
	if errors.Is(err, repository.ErrNotFound) {
		s.replace(nil, "")
		return nil
	}
	if err != nil {
		return fmt.Errorf("loading samples: %w", err)
	}

	samples, notes, err := decodeDocument(slot.Data)
	if err != nil {
		s.recover(ctx, &PersistenceCorruptError{Key: s.key, Err: err})
		s.replace(nil, slot.Version)
		return nil
	}
	for _, note := range notes {
		s.logger.Warn("legacy sample import", "slot", s.key, "note", note)
	}
	s.replace(samples, slot.Version)
	return nil
}

func (s *Service) recover(ctx context.Context, corrupt *PersistenceCorruptError) {
	s.logger.Warn("sample document corrupt, starting empty", "slot", corrupt.Key, "error", corrupt)
	if s.metrics != nil {
		s.metrics.DocumentRecovered()
	}
	s.logActivity(ctx, &activity.ActivityEntry{
		ActivityType: activity.TypeDocumentRecovered,
		Summary:      fmt.Sprintf("discarded corrupt document in slot %s", corrupt.Key),
		Details:      corrupt.Error(),
	})
}

// persist writes next to the slot and makes it the current collection only
// if the write succeeded.
func (s *Service) persist(ctx context.Context, next []Sample) error {
	data, err := encodeDocument(next)
	if err != nil {
		return fmt.Errorf("encoding samples: %w", err)
	}
	version, err := s.slots.Put(ctx, s.key, data, s.version)
	if err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return fmt.Errorf("%w: %w", ErrConflict, err)
		}
		return fmt.Errorf("saving samples: %w", err)
	}
	s.replace(next, version)
	return nil
}

func (s *Service) replace(samples []Sample, version string) {
	if samples == nil {
		samples = []Sample{}
	}
	index := make(map[string]int, len(samples))
	for i, rec := range samples {
		index[rec.SampleID] = i
	}
	s.samples = samples
	s.index = index
	s.version = version
	s.loaded = true
	if s.metrics != nil {
		s.metrics.SetSampleCount(len(samples))
	}
}

// claimID applies the collision policy to id. self is the index of the sample
// being updated, or -1 on create.
func (s *Service) claimID(id string, self int) (string, error) {
	taken := func(candidate string) bool {
		idx, ok := s.index[candidate]
		return ok && idx != self
	}
	if !taken(id) {
		return id, nil
	}
	if s.collisions == CollisionDisambiguate {
		return disambiguate(id, taken), nil
	}
	return "", fmt.Errorf("%w: %s", ErrDuplicateID, id)
}

func (s *Service) logActivity(ctx context.Context, entry *activity.ActivityEntry) {
	if s.activities == nil {
		return
	}
	if err := s.activities.Log(ctx, entry); err != nil {
		s.logger.Warn("failed to log activity", "type", entry.ActivityType, "error", err)
	}
}

func (s *Service) observe(operation string, start time.Time, err *error) {
	if s.metrics == nil {
		return
	}
	s.metrics.Observe(operation, *err, time.Since(start))
}
