package gateway

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/toolmesh/gatefed/internal/eventbus"
	"github.com/toolmesh/gatefed/internal/store"
	"github.com/toolmesh/gatefed/pkg/log"
)

// Prober is the Upstream Connector's boundary as seen by the registry: open
// a session to a gateway, return its capabilities and tool descriptors.
type Prober interface {
	Probe(ctx context.Context, url, authType string, authValue map[string]string) (map[string]any, []ToolDescriptor, error)
}

// ToolStatusToggler is the sibling Tool Service's boundary: only its
// toggle_tool_status operation is consumed, per spec.md §1.
type ToolStatusToggler interface {
	ToggleToolStatus(ctx context.Context, toolID string, enabled bool) error
}

// Registry is the Gateway Registry (C6): CRUD plus activation toggling over
// persisted gateways, enforcing name uniqueness and driving tool attachment.
// Every public method wraps one store transaction and publishes its
// lifecycle event strictly after that transaction commits.
type Registry struct {
	store       store.Store
	bus         *eventbus.Bus
	prober      Prober
	toolToggler ToolStatusToggler

	active *activeURLSet
	log    zerolog.Logger
}

// New constructs a Registry and primes its ActiveURLSet from the store.
// toolToggler may be nil in deployments that run without the Tool Service;
// cascading toggles are then skipped with a logged warning.
func New(ctx context.Context, st store.Store, bus *eventbus.Bus, prober Prober, toolToggler ToolStatusToggler) (*Registry, error) {
	r := &Registry{
		store:       st,
		bus:         bus,
		prober:      prober,
		toolToggler: toolToggler,
		active:      newActiveURLSet(),
		log:         log.WithComponent("gateway-registry"),
	}

	gateways, err := st.ListGateways(ctx, false)
	if err != nil {
		return nil, err
	}
	for _, g := range gateways {
		r.active.add(g.URL)
	}
	return r, nil
}

// IsActiveURL reports whether url belongs to a currently-enabled gateway.
func (r *Registry) IsActiveURL(url string) bool { return r.active.contains(url) }

// ActiveURLCount reports the size of the ActiveURLSet.
func (r *Registry) ActiveURLCount() int { return r.active.count() }

// Register creates a new gateway: rejects duplicate names, probes the
// upstream, attaches newly-discovered tools, and publishes gateway_added.
func (r *Registry) Register(ctx context.Context, in RegisterInput) (Gateway, error) {
	var result Gateway

	err := r.store.WithTx(ctx, func(tx store.Tx) error {
		existing, found, err := tx.GetGatewayByName(in.Name)
		if err != nil {
			return err
		}
		if found {
			return &NameConflictError{Name: in.Name, ExistingID: existing.ID, ExistingEnabled: existing.Status.Enabled}
		}

		caps, descriptors, err := r.prober.Probe(ctx, in.URL, in.AuthType, in.AuthValue)
		if err != nil {
			return err
		}

		now := time.Now().UTC()
		g := Gateway{
			ID:           uuid.NewString(),
			Name:         in.Name,
			URL:          in.URL,
			Description:  in.Description,
			Capabilities: caps,
			AuthType:     in.AuthType,
			AuthValue:    in.AuthValue,
			Status:       Status{Enabled: true, Reachable: true},
			LastSeen:     now,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		if err := tx.InsertGateway(g); err != nil {
			return err
		}

		for _, d := range descriptors {
			_, exists, err := tx.GetToolByName(d.Name)
			if err != nil {
				return err
			}
			if exists {
				// Name is a global key; a pre-existing tool is left untouched
				// and not attached to the new gateway (spec.md §4.6 step 3).
				continue
			}
			tool := Tool{
				ID:              uuid.NewString(),
				Name:            d.Name,
				URL:             g.URL,
				Description:     d.Description,
				IntegrationType: d.IntegrationType,
				RequestType:     d.RequestType,
				Headers:         d.Headers,
				InputSchema:     d.InputSchema,
				JSONPathFilter:  d.JSONPathFilter,
				AuthType:        g.AuthType,
				AuthValue:       g.AuthValue,
				GatewayID:       g.ID,
				Status:          Status{Enabled: true},
			}
			if err := tx.InsertTool(tool); err != nil {
				return err
			}
		}

		result = g
		return nil
	})
	if err != nil {
		return Gateway{}, err
	}

	r.active.add(result.URL)
	r.publish(eventbus.GatewayAdded, result)
	return result, nil
}

// Update applies a patch to an existing gateway. A URL change triggers a
// re-probe; re-probe failure is logged and non-fatal, per spec.md §4.6.
func (r *Registry) Update(ctx context.Context, id string, patch UpdatePatch) (Gateway, error) {
	var result Gateway
	var oldURL string
	var urlChanged bool
	var reprobeErr error

	err := r.store.WithTx(ctx, func(tx store.Tx) error {
		g, found, err := tx.GetGateway(id)
		if err != nil {
			return err
		}
		if !found || !g.Status.Enabled {
			return &NotFoundError{ID: id}
		}
		oldURL = g.URL

		if patch.Name != nil && *patch.Name != g.Name {
			existing, exists, err := tx.GetGatewayByName(*patch.Name)
			if err != nil {
				return err
			}
			if exists {
				return &NameConflictError{Name: *patch.Name, ExistingID: existing.ID, ExistingEnabled: existing.Status.Enabled}
			}
			g.Name = *patch.Name
		}
		if patch.URL != nil && *patch.URL != g.URL {
			urlChanged = true
			g.URL = *patch.URL
		}
		if patch.Description != nil {
			g.Description = *patch.Description
		}
		if patch.AuthType != nil {
			g.AuthType = *patch.AuthType
		}
		if patch.AuthValue != nil {
			g.AuthValue = patch.AuthValue
		}

		if urlChanged {
			caps, _, err := r.prober.Probe(ctx, g.URL, g.AuthType, g.AuthValue)
			if err != nil {
				reprobeErr = err
			} else {
				g.Capabilities = caps
				g.LastSeen = time.Now().UTC()
				g.Status.Reachable = true
			}
		}

		g.UpdatedAt = time.Now().UTC()
		if err := tx.UpdateGateway(g); err != nil {
			return err
		}
		result = g
		return nil
	})
	if err != nil {
		return Gateway{}, err
	}

	if urlChanged {
		r.active.remove(oldURL)
		r.active.add(result.URL)
	}
	if reprobeErr != nil {
		r.log.Warn().Err(reprobeErr).Str("gateway_id", id).Msg("re-probe after url change failed, keeping previous capabilities")
	}

	r.publish(eventbus.GatewayUpdated, result)
	return result, nil
}

// Toggle enables or disables a gateway. A no-op transition emits no event,
// per P6. Enabling re-probes the upstream; probe failure keeps the
// transition but is logged. Tool status is cascaded both to this service's
// own tool rows and, when configured, to the sibling Tool Service.
func (r *Registry) Toggle(ctx context.Context, id string, enabled bool) (Gateway, error) {
	var result Gateway
	var noop bool
	var reprobeErr error
	var toolIDs []string

	err := r.store.WithTx(ctx, func(tx store.Tx) error {
		g, found, err := tx.GetGateway(id)
		if err != nil {
			return err
		}
		if !found {
			return &NotFoundError{ID: id}
		}
		if g.Status.Enabled == enabled {
			noop = true
			result = g
			return nil
		}

		g.Status.Enabled = enabled
		if enabled {
			caps, _, err := r.prober.Probe(ctx, g.URL, g.AuthType, g.AuthValue)
			if err != nil {
				reprobeErr = err
				g.Status.Reachable = false
			} else {
				g.Capabilities = caps
				g.LastSeen = time.Now().UTC()
				g.Status.Reachable = true
			}
		} else {
			g.Status.Reachable = false
		}
		g.UpdatedAt = time.Now().UTC()
		if err := tx.UpdateGateway(g); err != nil {
			return err
		}

		tools, err := tx.ListToolsByGateway(id)
		if err != nil {
			return err
		}
		for _, tool := range tools {
			if err := tx.SetToolEnabled(tool.ID, enabled); err != nil {
				return err
			}
			toolIDs = append(toolIDs, tool.ID)
		}

		result = g
		return nil
	})
	if err != nil {
		return Gateway{}, err
	}
	if noop {
		return result, nil
	}

	if enabled {
		r.active.add(result.URL)
	} else {
		r.active.remove(result.URL)
	}
	if reprobeErr != nil {
		r.log.Warn().Err(reprobeErr).Str("gateway_id", id).Msg("re-probe on activation failed, keeping transition")
	}

	if r.toolToggler == nil && len(toolIDs) > 0 {
		r.log.Warn().Str("gateway_id", id).Msg("no tool service configured, skipping cascading tool toggles")
	}
	for _, toolID := range toolIDs {
		if r.toolToggler == nil {
			continue
		}
		if err := r.toolToggler.ToggleToolStatus(ctx, toolID, enabled); err != nil {
			r.log.Warn().Err(err).Str("tool_id", toolID).Msg("tool service toggle failed")
		}
	}

	if enabled {
		r.publish(eventbus.GatewayActivated, result)
	} else {
		r.publish(eventbus.GatewayDeactivated, result)
	}
	return result, nil
}

// Delete hard-deletes a gateway and its tools; there is no tombstone.
func (r *Registry) Delete(ctx context.Context, id string) error {
	var deleted Gateway

	err := r.store.WithTx(ctx, func(tx store.Tx) error {
		g, found, err := tx.GetGateway(id)
		if err != nil {
			return err
		}
		if !found {
			return &NotFoundError{ID: id}
		}
		if err := tx.DeleteToolsByGateway(id); err != nil {
			return err
		}
		if err := tx.DeleteGateway(id); err != nil {
			return err
		}
		deleted = g
		return nil
	})
	if err != nil {
		return err
	}

	r.active.remove(deleted.URL)
	r.publish(eventbus.GatewayDeleted, deleted)
	return nil
}

// List returns all gateways, optionally including disabled ones.
func (r *Registry) List(ctx context.Context, includeInactive bool) ([]Gateway, error) {
	return r.store.ListGateways(ctx, includeInactive)
}

// Get returns a single gateway by id. Get fails NotFound when the gateway
// is disabled and includeInactive is false.
func (r *Registry) Get(ctx context.Context, id string, includeInactive bool) (Gateway, error) {
	var g Gateway
	err := r.store.WithTx(ctx, func(tx store.Tx) error {
		var found bool
		var err error
		g, found, err = tx.GetGateway(id)
		if err != nil {
			return err
		}
		if !found {
			return &NotFoundError{ID: id}
		}
		if !g.Status.Enabled && !includeInactive {
			return &NotFoundError{ID: id}
		}
		return nil
	})
	return g, err
}

// MarkSeen records a successful health probe's timestamp. Called by the
// Health Monitor; never surfaces an error to the probe loop beyond logging,
// per spec.md §7.
func (r *Registry) MarkSeen(ctx context.Context, id string) {
	err := r.store.WithTx(ctx, func(tx store.Tx) error {
		g, found, err := tx.GetGateway(id)
		if err != nil {
			return err
		}
		if !found {
			return &NotFoundError{ID: id}
		}
		g.LastSeen = time.Now().UTC()
		g.UpdatedAt = g.LastSeen
		g.Status.Reachable = true
		return tx.UpdateGateway(g)
	})
	if err != nil {
		r.log.Warn().Err(err).Str("gateway_id", id).Msg("failed to record successful probe")
	}
}

func (r *Registry) publish(t eventbus.EventType, g Gateway) {
	if r.bus == nil {
		return
	}
	r.bus.Publish(eventbus.Event{
		Type: t,
		Data: eventbus.GatewaySnapshot{
			ID:          g.ID,
			Name:        g.Name,
			URL:         g.URL,
			Description: g.Description,
			Enabled:     g.Status.Enabled,
		},
	})
}
