// Package filestore persists slots as files under a root directory.
package filestore

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/rpggio/merobase/internal/repository"
)

const fileSuffix = ".json"

// Store maps each slot key to <root>/<key>.json. The version of a slot is the
// SHA-256 of its content. Writes are serialised within the process and
// replace files atomically.
type Store struct {
	root string
	mu   sync.Mutex
}

// New returns a store rooted at root, creating it if needed.
func New(root string) (*Store, error) {
	if root == "" {
		root = "./data"
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("creating store root: %w", err)
	}
	return &Store{root: root}, nil
}

// sanitizeKey rejects keys that would escape root.
func sanitizeKey(key string) (string, error) {
	if strings.TrimSpace(key) == "" {
		return "", fmt.Errorf("%w: empty key", repository.ErrInvalidInput)
	}
	if strings.Contains(key, "..") || strings.HasPrefix(key, "/") || strings.ContainsAny(key, `\:`) {
		return "", fmt.Errorf("%w: invalid key %q", repository.ErrInvalidInput, key)
	}
	return filepath.ToSlash(filepath.Clean(key)), nil
}

func (s *Store) pathFor(key string) (string, error) {
	k, err := sanitizeKey(key)
	if err != nil {
		return "", err
	}
	return filepath.Join(s.root, filepath.FromSlash(k)+fileSuffix), nil
}

// Get reads the slot stored under key.
func (s *Store) Get(ctx context.Context, key string) (repository.Slot, error) {
	if err := ctx.Err(); err != nil {
		return repository.Slot{}, err
	}
	path, err := s.pathFor(key)
	if err != nil {
		return repository.Slot{}, err
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return repository.Slot{}, repository.ErrNotFound
	}
	if err != nil {
		return repository.Slot{}, fmt.Errorf("reading slot %s: %w", key, err)
	}
	return repository.Slot{Data: data, Version: etag(data)}, nil
}

// Put replaces the slot if its content hash matches expectedVersion.
func (s *Store) Put(ctx context.Context, key string, data []byte, expectedVersion string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	path, err := s.pathFor(key)
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	current, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		if expectedVersion != "" {
			return "", repository.ErrConflict
		}
	case err != nil:
		return "", fmt.Errorf("reading slot %s: %w", key, err)
	default:
		if expectedVersion != etag(current) {
			return "", repository.ErrConflict
		}
	}

	if err := writeAtomic(path, data); err != nil {
		return "", fmt.Errorf("writing slot %s: %w", key, err)
	}
	return etag(data), nil
}

func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return err
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

func etag(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
