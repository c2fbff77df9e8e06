package postgres

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/rpggio/merobase/internal/repository"
)

// SlotRepository stores documents in kv_slots with integer versions.
type SlotRepository struct {
	q Querier
}

// NewSlotRepository creates a new SlotRepository.
func NewSlotRepository(q Querier) *SlotRepository {
	return &SlotRepository{q: q}
}

// Get returns the document stored under key.
func (r *SlotRepository) Get(ctx context.Context, key string) (repository.Slot, error) {
	var data []byte
	var version int64
	err := r.q.QueryRow(ctx, `SELECT data, version FROM kv_slots WHERE key = $1`, key).Scan(&data, &version)
	if errors.Is(err, pgx.ErrNoRows) {
		return repository.Slot{}, repository.ErrNotFound
	}
	if err != nil {
		return repository.Slot{}, fmt.Errorf("failed to get slot: %w", err)
	}
	return repository.Slot{Data: data, Version: strconv.FormatInt(version, 10)}, nil
}

// Put writes the document with optimistic concurrency control.
func (r *SlotRepository) Put(ctx context.Context, key string, data []byte, expectedVersion string) (string, error) {
	if key == "" {
		return "", repository.ErrInvalidInput
	}

	if expectedVersion == "" {
		tag, err := r.q.Exec(ctx, `
			INSERT INTO kv_slots (key, data, version, updated_at)
			VALUES ($1, $2, 1, now())
			ON CONFLICT (key) DO NOTHING
		`, key, data)
		if err != nil {
			return "", fmt.Errorf("failed to insert slot: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return "", repository.ErrConflict
		}
		return "1", nil
	}

	expected, err := strconv.ParseInt(expectedVersion, 10, 64)
	if err != nil {
		return "", repository.ErrConflict
	}
	tag, err := r.q.Exec(ctx, `
		UPDATE kv_slots
		SET data = $2, version = version + 1, updated_at = now()
		WHERE key = $1 AND version = $3
	`, key, data, expected)
	if err != nil {
		return "", fmt.Errorf("failed to update slot: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return "", repository.ErrConflict
	}
	return strconv.FormatInt(expected+1, 10), nil
}
