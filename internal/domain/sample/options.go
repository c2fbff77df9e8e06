package sample

import (
	"fmt"
	"time"
)

// DefaultSlotKey is the slot the sample document lives in.
const DefaultSlotKey = "mero_samples"

// CollisionPolicy decides what happens when a derived ID is already taken.
type CollisionPolicy string

const (
	// CollisionReject fails the write with ErrDuplicateID.
	CollisionReject CollisionPolicy = "reject"
	// CollisionDisambiguate appends "-2", "-3", ... until the ID is free.
	CollisionDisambiguate CollisionPolicy = "disambiguate"
)

// ParseCollisionPolicy parses a configured policy name. Empty means reject.
func ParseCollisionPolicy(s string) (CollisionPolicy, error) {
	switch CollisionPolicy(s) {
	case "", CollisionReject:
		return CollisionReject, nil
	case CollisionDisambiguate:
		return CollisionDisambiguate, nil
	default:
		return "", fmt.Errorf("unknown collision policy %q", s)
	}
}

// Option configures a Service.
type Option func(*Service)

// WithSlotKey overrides DefaultSlotKey.
func WithSlotKey(key string) Option {
	return func(s *Service) {
		if key != "" {
			s.key = key
		}
	}
}

// WithClock sets the time source used for lastUpdated and default dates.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithCollisionPolicy sets the duplicate ID policy.
func WithCollisionPolicy(p CollisionPolicy) Option {
	return func(s *Service) { s.collisions = p }
}

// WithLegacyLatestEdited makes LatestEdited use the positional approximation.
func WithLegacyLatestEdited() Option {
	return func(s *Service) { s.legacyLatestEdited = true }
}

// WithMetrics attaches a metrics recorder.
func WithMetrics(m MetricsRecorder) Option {
	return func(s *Service) { s.metrics = m }
}
