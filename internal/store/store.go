// Package store is the persistence boundary spec.md scopes out of the
// federation core: a relational store for gateways and tools, with JSON
// columns for their nested fields and a functional index on status.
package store

import (
	"context"

	"github.com/toolmesh/gatefed/internal/model"
)

// Store opens transactions against the gateway/tool tables. Every public
// Registry operation runs inside exactly one Tx, per spec.md's ordering
// guarantee that registry mutations on a single gateway id are serialized
// by the underlying persistence transaction.
type Store interface {
	WithTx(ctx context.Context, fn func(tx Tx) error) error
	ListGateways(ctx context.Context, includeInactive bool) ([]model.Gateway, error)
	Close() error
}

// Tx is the set of operations available inside a single transaction. The
// Get* lookups report absence via a bool rather than an error so callers can
// distinguish "absent" from "query failed"; the gateway package turns a
// false into its own NotFoundError.
type Tx interface {
	GetGateway(id string) (model.Gateway, bool, error)
	GetGatewayByName(name string) (model.Gateway, bool, error)
	InsertGateway(g model.Gateway) error
	UpdateGateway(g model.Gateway) error
	DeleteGateway(id string) error

	GetToolByName(name string) (model.Tool, bool, error)
	InsertTool(t model.Tool) error
	ListToolsByGateway(gatewayID string) ([]model.Tool, error)
	DeleteToolsByGateway(gatewayID string) error
	SetToolEnabled(id string, enabled bool) error
}
