package leaderelect

import "context"

// NoneElector is the degenerate single-process backend: this instance is
// always leader.
type NoneElector struct{}

func NewNoneElector() *NoneElector { return &NoneElector{} }

func (NoneElector) TryAcquire(ctx context.Context) (bool, error) { return true, nil }
func (NoneElector) Refresh(ctx context.Context) error            { return nil }
func (NoneElector) Release(ctx context.Context) error            { return nil }
func (NoneElector) IsLeader() bool                               { return true }
