// Package runlock guards the data directory against concurrent pipeline
// runs with a file lock.
package runlock

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
)

// ErrHeld indicates another process already holds the run lock.
var ErrHeld = errors.New("another run is already in progress")

// Lock is an exclusive lock over one data directory.
type Lock struct {
	path string
	lock *flock.Flock
}

// New prepares a lock file inside dataDir without acquiring it.
func New(dataDir string) (*Lock, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("create lock directory: %w", err)
	}
	path := filepath.Join(dataDir, "reelsync.lock")
	return &Lock{path: path, lock: flock.New(path)}, nil
}

// Acquire takes the lock without blocking. ErrHeld means a concurrent run
// owns it.
func (l *Lock) Acquire() error {
	ok, err := l.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire run lock: %w", err)
	}
	if !ok {
		return fmt.Errorf("%w (lock file %s)", ErrHeld, l.path)
	}
	return nil
}

// Release drops the lock. Safe to call when the lock was never acquired.
func (l *Lock) Release() error {
	return l.lock.Unlock()
}

// Path returns the lock file location.
func (l *Lock) Path() string {
	return l.path
}
