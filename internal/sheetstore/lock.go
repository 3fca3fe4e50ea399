package sheetstore

import (
	"fmt"

	"github.com/gofrs/flock"
)

// EditorLock is an advisory lock on the data directory. Commands that modify
// sheets hold it so two editors never interleave writes to the same store.
type EditorLock struct {
	path string
	lock *flock.Flock
}

// AcquireLock takes the lock at path without blocking. It returns ErrLocked
// when another process holds it.
func AcquireLock(path string) (*EditorLock, error) {
	l := flock.New(path)
	ok, err := l.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire lock %s: %w", path, err)
	}
	if !ok {
		return nil, fmt.Errorf("%s: %w", path, ErrLocked)
	}
	return &EditorLock{path: path, lock: l}, nil
}

// Path returns the lock file location.
func (l *EditorLock) Path() string { return l.path }

// Release unlocks. It is safe to call on a nil lock.
func (l *EditorLock) Release() error {
	if l == nil || l.lock == nil {
		return nil
	}
	if err := l.lock.Unlock(); err != nil {
		return fmt.Errorf("release lock %s: %w", l.path, err)
	}
	return nil
}
