// Package backend selects and opens the configured data store.
package backend

import (
	"fmt"

	"fondi/internal/config"
	"fondi/internal/log"
	"fondi/internal/storage"
	"fondi/internal/store"
	"fondi/internal/store/memory"
)

type Type string

const (
	SQLite Type = "sqlite"
	Memory Type = "memory"
)

func (t Type) IsValid() bool {
	return t == SQLite || t == Memory
}

// Result is an opened store plus its cleanup, nil for stores that hold
// no external resources.
type Result struct {
	Store   store.Store
	Cleanup func() error
}

// Open builds the store named by cfg.DataBackend.
func Open(cfg *config.Config, logger *log.Logger) (*Result, error) {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}

	backendType := Type(cfg.DataBackend)
	switch backendType {
	case SQLite:
		repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
		if err != nil {
			return nil, fmt.Errorf("open sqlite store: %w", err)
		}
		logger.Info("Initialized SQLite store", "db_path", cfg.SQLiteDBPath)
		return &Result{Store: repo, Cleanup: repo.Close}, nil
	case Memory:
		logger.Info("Initialized in-memory store")
		return &Result{Store: memory.New()}, nil
	default:
		return nil, fmt.Errorf("unknown data backend: %s", cfg.DataBackend)
	}
}
