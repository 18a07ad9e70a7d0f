package leaderelect

import (
	"context"
	"sync"
	"time"

	bolt "go.etcd.io/bbolt"
)

// acquireTimeout is how long bolt.Open waits for the advisory lock before
// giving up; kept well under a health cycle so a non-leader never blocks.
const acquireTimeout = 1 * time.Millisecond

// FileLockElector determines leadership by contending for a non-blocking OS
// advisory lock on a shared path each cycle. bbolt takes an exclusive flock
// on Open and releases it on Close, which this package repurposes purely for
// its locking side effect rather than as a document store.
type FileLockElector struct {
	path string

	mu      sync.Mutex
	db      *bolt.DB
	leading bool
}

// NewFileLockElector returns an elector contending for the advisory lock at
// path. The file is created on first successful acquisition if absent.
func NewFileLockElector(path string) *FileLockElector {
	return &FileLockElector{path: path}
}

// TryAcquire attempts to open the lock file with a short timeout. Success
// means this process now holds the lock; it is released by Release or
// process exit.
func (e *FileLockElector) TryAcquire(ctx context.Context) (bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.db != nil {
		e.leading = true
		return true, nil
	}

	db, err := bolt.Open(e.path, 0600, &bolt.Options{Timeout: acquireTimeout})
	if err != nil {
		e.leading = false
		return false, nil
	}

	e.db = db
	e.leading = true
	return true, nil
}

// Refresh re-validates that the lock is still held. The lock itself does
// not expire, so this confirms the handle is still open.
func (e *FileLockElector) Refresh(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.db == nil {
		e.leading = false
	}
	return nil
}

// Release closes the lock file handle, dropping the advisory lock.
func (e *FileLockElector) Release(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.leading = false
	if e.db == nil {
		return nil
	}
	err := e.db.Close()
	e.db = nil
	return err
}

// IsLeader reports the last known acquisition result.
func (e *FileLockElector) IsLeader() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.leading
}
