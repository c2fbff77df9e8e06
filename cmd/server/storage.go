package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/rpggio/merobase/internal/config"
	"github.com/rpggio/merobase/internal/domain/activity"
	"github.com/rpggio/merobase/internal/domain/sample"
	"github.com/rpggio/merobase/internal/filestore"
	"github.com/rpggio/merobase/internal/memory"
	"github.com/rpggio/merobase/internal/postgres"
	"github.com/rpggio/merobase/internal/s3store"
	"github.com/rpggio/merobase/internal/sqlite"
)

// storage holds the opened persistence backends.
type storage struct {
	slots      sample.SlotRepository
	activities activity.Repository
	closers    []func()
}

func (s *storage) Close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		s.closers[i]()
	}
}

// openStorage opens the slot backend named by cfg.Driver. The activity log
// lives in SQLite for every driver except memory.
func openStorage(ctx context.Context, cfg config.StorageConfig, logger *slog.Logger) (_ *storage, err error) {
	store := &storage{}
	defer func() {
		if err != nil {
			store.Close()
		}
	}()

	if cfg.Driver == "memory" {
		store.slots = memory.NewSlotStore()
		store.activities = memory.NewActivityLog()
		logger.Info("storage opened", "driver", cfg.Driver)
		return store, nil
	}

	db, err := openSQLite(cfg.SQLitePath)
	if err != nil {
		return nil, err
	}
	store.closers = append(store.closers, func() { _ = db.Close() })
	store.activities = sqlite.NewActivityRepository(db)

	switch cfg.Driver {
	case "sqlite":
		store.slots = sqlite.NewSlotRepository(db)
	case "file":
		fs, err := filestore.New(cfg.Dir)
		if err != nil {
			return nil, err
		}
		store.slots = fs
	case "postgres":
		pg, err := postgres.Open(ctx, postgres.Config{URL: cfg.PostgresDSN})
		if err != nil {
			return nil, err
		}
		store.closers = append(store.closers, pg.Close)
		if err := postgres.Migrate(ctx, pg); err != nil {
			return nil, err
		}
		store.slots = postgres.NewSlotRepository(pg)
	case "s3":
		s3, err := s3store.New(ctx, s3store.Config{
			Region:    cfg.S3.Region,
			Bucket:    cfg.S3.Bucket,
			Prefix:    cfg.S3.Prefix,
			Endpoint:  cfg.S3.Endpoint,
			PathStyle: cfg.S3.PathStyle,
		})
		if err != nil {
			return nil, err
		}
		store.slots = s3
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}

	logger.Info("storage opened", "driver", cfg.Driver, "slot_key", cfg.SlotKey)
	return store, nil
}

func openSQLite(path string) (*sqlite.DB, error) {
	if err := ensureDBDir(path); err != nil {
		return nil, fmt.Errorf("preparing database path: %w", err)
	}
	db, err := sqlite.New(path)
	if err != nil {
		return nil, err
	}
	if err := db.RunMigrations(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

func ensureDBDir(path string) error {
	if path == ":memory:" || path == "" {
		return nil
	}
	dir := filepath.Dir(path)
	if dir == "." {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}
