package history

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
)

// ErrLocked is returned when another process holds the history lock.
var ErrLocked = errors.New("history is in use by another leadscout session")

// Lock is an advisory lock that keeps a single session writing History.
type Lock struct {
	fl *flock.Flock
}

// AcquireLock takes the lock file at path without blocking.
// Release it with Unlock (use defer).
func AcquireLock(path string) (*Lock, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create lock directory: %w", err)
	}
	fl := flock.New(path)
	ok, err := fl.TryLock()
	if err != nil {
		return nil, fmt.Errorf("failed to lock %s: %w", path, err)
	}
	if !ok {
		return nil, fmt.Errorf("%w (lock file %s)", ErrLocked, path)
	}
	return &Lock{fl: fl}, nil
}

// LockPath returns the lock file used for the store at storePath.
func LockPath(storePath string) string {
	return storePath + ".lock"
}

// Unlock releases the lock. Safe on a nil Lock.
func (l *Lock) Unlock() error {
	if l == nil || l.fl == nil {
		return nil
	}
	return l.fl.Unlock()
}
