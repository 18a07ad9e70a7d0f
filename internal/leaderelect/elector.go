// Package leaderelect chooses at most one process, among possibly many
// running the federation service, to run the health-check loop. Three
// backends implement the same capability set so the health monitor can be
// unit-tested against a fake rather than a real cluster.
package leaderelect

import "context"

// Elector is the capability set the health loop depends on: acquire once,
// refresh while held, release on shutdown, and report current status.
type Elector interface {
	// TryAcquire attempts to become leader. It is safe to call repeatedly
	// by a process that is not yet leader.
	TryAcquire(ctx context.Context) (bool, error)
	// Refresh extends leadership. Calling Refresh while not leader is a
	// no-op that returns nil.
	Refresh(ctx context.Context) error
	// Release gives up leadership, if held.
	Release(ctx context.Context) error
	// IsLeader reports the last known leadership state without doing I/O.
	IsLeader() bool
}

// BackendType selects which Elector implementation to build.
type BackendType string

const (
	BackendRaft     BackendType = "raft"
	BackendFileLock BackendType = "filelock"
	BackendNone     BackendType = "none"
)
