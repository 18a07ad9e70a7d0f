package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/toolmesh/gatefed/internal/gateway"
)

func openTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "gatefed.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func sampleGateway(id, name string, enabled bool) gateway.Gateway {
	now := time.Now().UTC().Truncate(time.Second)
	return gateway.Gateway{
		ID:           id,
		Name:         name,
		URL:          "https://" + name + ".example/",
		Capabilities: map[string]any{},
		AuthType:     "none",
		AuthValue:    map[string]string{},
		Status:       gateway.Status{Enabled: enabled},
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func TestInsertAndGetGateway(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	g := sampleGateway("g1", "alpha", true)
	err := s.WithTx(ctx, func(tx Tx) error {
		return tx.InsertGateway(g)
	})
	require.NoError(t, err)

	var got gateway.Gateway
	var found bool
	err = s.WithTx(ctx, func(tx Tx) error {
		var e error
		got, found, e = tx.GetGateway("g1")
		return e
	})
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "alpha", got.Name)
	assert.True(t, got.Status.Enabled)
}

func TestListGatewaysFiltersDisabled(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.WithTx(ctx, func(tx Tx) error {
		return tx.InsertGateway(sampleGateway("g1", "active", true))
	}))
	require.NoError(t, s.WithTx(ctx, func(tx Tx) error {
		return tx.InsertGateway(sampleGateway("g2", "inactive", false))
	}))

	active, err := s.ListGateways(ctx, false)
	require.NoError(t, err)
	assert.Len(t, active, 1)
	assert.Equal(t, "active", active[0].Name)

	all, err := s.ListGateways(ctx, true)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestRollbackOnError(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	sentinel := assert.AnError
	err := s.WithTx(ctx, func(tx Tx) error {
		if e := tx.InsertGateway(sampleGateway("g1", "rollback", true)); e != nil {
			return e
		}
		return sentinel
	})
	assert.ErrorIs(t, err, sentinel)

	all, err := s.ListGateways(ctx, true)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestInsertToolAndLookupByName(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	err := s.WithTx(ctx, func(tx Tx) error {
		if e := tx.InsertGateway(sampleGateway("g1", "alpha", true)); e != nil {
			return e
		}
		return tx.InsertTool(gateway.Tool{
			ID:        "t1",
			Name:      "search",
			URL:       "https://alpha.example/",
			GatewayID: "g1",
			Headers:   map[string]string{},
			InputSchema: map[string]any{},
			AuthValue: map[string]string{},
		})
	})
	require.NoError(t, err)

	var found bool
	err = s.WithTx(ctx, func(tx Tx) error {
		_, f, e := tx.GetToolByName("search")
		found = f
		return e
	})
	require.NoError(t, err)
	assert.True(t, found)
}

func TestDeleteToolsByGatewayRemovesAll(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.WithTx(ctx, func(tx Tx) error {
		if e := tx.InsertGateway(sampleGateway("g1", "alpha", true)); e != nil {
			return e
		}
		if e := tx.InsertTool(gateway.Tool{ID: "t1", Name: "search", GatewayID: "g1", Headers: map[string]string{}, InputSchema: map[string]any{}, AuthValue: map[string]string{}}); e != nil {
			return e
		}
		return tx.InsertTool(gateway.Tool{ID: "t2", Name: "fetch", GatewayID: "g1", Headers: map[string]string{}, InputSchema: map[string]any{}, AuthValue: map[string]string{}})
	}))

	err := s.WithTx(ctx, func(tx Tx) error {
		return tx.DeleteToolsByGateway("g1")
	})
	require.NoError(t, err)

	err = s.WithTx(ctx, func(tx Tx) error {
		tools, e := tx.ListToolsByGateway("g1")
		assert.Empty(t, tools)
		return e
	})
	require.NoError(t, err)
}
