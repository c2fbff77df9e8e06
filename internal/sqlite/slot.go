package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/rpggio/merobase/internal/repository"
)

// SlotRepository stores documents in the kv_slots table. Versions are
// integers incremented on every write.
type SlotRepository struct {
	db *DB
}

// NewSlotRepository creates a new SlotRepository
func NewSlotRepository(db *DB) *SlotRepository {
	return &SlotRepository{db: db}
}

// Get returns the document stored under key
func (r *SlotRepository) Get(ctx context.Context, key string) (repository.Slot, error) {
	var data []byte
	var version int64
	err := r.db.QueryRowContext(ctx,
		`SELECT data, version FROM kv_slots WHERE key = ?`, key,
	).Scan(&data, &version)
	if errors.Is(err, sql.ErrNoRows) {
		return repository.Slot{}, repository.ErrNotFound
	}
	if err != nil {
		return repository.Slot{}, fmt.Errorf("failed to get slot: %w", err)
	}
	return repository.Slot{Data: data, Version: strconv.FormatInt(version, 10)}, nil
}

// Put writes the document with optimistic concurrency control
func (r *SlotRepository) Put(ctx context.Context, key string, data []byte, expectedVersion string) (string, error) {
	if key == "" {
		return "", repository.ErrInvalidInput
	}
	now := time.Now().UTC()

	if expectedVersion == "" {
		_, err := r.db.ExecContext(ctx,
			`INSERT INTO kv_slots (key, data, version, updated_at) VALUES (?, ?, 1, ?)`,
			key, data, now,
		)
		if isUniqueViolation(err) {
			return "", repository.ErrConflict
		}
		if err != nil {
			return "", fmt.Errorf("failed to insert slot: %w", err)
		}
		return "1", nil
	}

	expected, err := strconv.ParseInt(expectedVersion, 10, 64)
	if err != nil {
		return "", repository.ErrConflict
	}

	result, err := r.db.ExecContext(ctx, `
		UPDATE kv_slots
		SET data = ?, version = version + 1, updated_at = ?
		WHERE key = ? AND version = ?
	`, data, now, key, expected)
	if err != nil {
		return "", fmt.Errorf("failed to update slot: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return "", fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		// Missing slot or a newer version: either way the caller is stale.
		return "", repository.ErrConflict
	}

	return strconv.FormatInt(expected+1, 10), nil
}
