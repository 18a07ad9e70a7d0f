package metrics

import (
	"context"
	"time"

	"github.com/toolmesh/gatefed/internal/gateway"
	"github.com/toolmesh/gatefed/internal/leaderelect"
)

// Registry is the subset of the gateway registry the collector polls.
type Registry interface {
	List(ctx context.Context, includeInactive bool) ([]gateway.Gateway, error)
	ActiveURLCount() int
}

// EventBus is the subset of the event bus the collector polls.
type EventBus interface {
	SubscriberCount() int
}

// Collector polls the registry, event bus, and leader elector on a ticker
// and publishes their state as Prometheus gauges.
type Collector struct {
	registry Registry
	bus      EventBus
	elector  leaderelect.Elector
	stopCh   chan struct{}
}

// NewCollector builds a Collector. bus and elector may be nil, in which
// case their gauges are left unset.
func NewCollector(registry Registry, bus EventBus, elector leaderelect.Elector) *Collector {
	return &Collector{registry: registry, bus: bus, elector: elector, stopCh: make(chan struct{})}
}

// Start begins polling every 15 seconds, collecting immediately on call.
func (c *Collector) Start() {
	ticker := time.NewTicker(15 * time.Second)
	go func() {
		c.collect()
		for {
			select {
			case <-ticker.C:
				c.collect()
			case <-c.stopCh:
				ticker.Stop()
				return
			}
		}
	}()
}

// Stop halts polling.
func (c *Collector) Stop() {
	close(c.stopCh)
}

func (c *Collector) collect() {
	c.collectGatewayMetrics()
	c.collectBusMetrics()
	c.collectLeaderMetrics()
}

func (c *Collector) collectGatewayMetrics() {
	gateways, err := c.registry.List(context.Background(), true)
	if err != nil {
		return
	}

	var enabled, disabled int
	for _, g := range gateways {
		if g.Status.Enabled {
			enabled++
		} else {
			disabled++
		}
	}
	GatewaysTotal.WithLabelValues("true").Set(float64(enabled))
	GatewaysTotal.WithLabelValues("false").Set(float64(disabled))
	ActiveURLSetSize.Set(float64(c.registry.ActiveURLCount()))
}

func (c *Collector) collectBusMetrics() {
	if c.bus == nil {
		return
	}
	SubscribersTotal.Set(float64(c.bus.SubscriberCount()))
}

func (c *Collector) collectLeaderMetrics() {
	if c.elector == nil {
		return
	}
	if c.elector.IsLeader() {
		LeaderStatus.Set(1)
	} else {
		LeaderStatus.Set(0)
	}
}
