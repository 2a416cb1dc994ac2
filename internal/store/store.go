package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"

	_ "modernc.org/sqlite"

	"reelsync/internal/config"
)

// ErrStore marks a failed store operation. Callers treat these as fatal for
// the current run; no silent data loss.
var ErrStore = errors.New("store operation failure")

func storeErr(operation string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrStore, operation, err)
}

// Store manages title and review persistence backed by SQLite.
type Store struct {
	db        *sql.DB
	path      string
	batchSize int
}

// Open initializes or connects to the database and verifies the schema.
func Open(cfg *config.Config) (*Store, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}
	return OpenPath(filepath.Join(cfg.Paths.DataDir, "reelsync.db"), cfg.Store.BatchSize)
}

// OpenPath opens the database at an explicit location.
func OpenPath(dbPath string, batchSize int) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	if batchSize < 1 {
		batchSize = 1
	}
	store := &Store{db: db, path: dbPath, batchSize: batchSize}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}

	return store, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the database file location.
func (s *Store) Path() string {
	return s.path
}
