// Package health runs the federation's periodic liveness loop (C5): only
// while this process holds leadership, probe every active gateway, track
// consecutive failures, and auto-deactivate past a configured threshold.
package health

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/toolmesh/gatefed/internal/auth"
	"github.com/toolmesh/gatefed/internal/gateway"
	"github.com/toolmesh/gatefed/internal/leaderelect"
	phealth "github.com/toolmesh/gatefed/pkg/health"
	"github.com/toolmesh/gatefed/pkg/log"
)

// Registry is the subset of the Gateway Registry the health loop depends
// on, kept narrow so it can be satisfied by a fake in tests.
type Registry interface {
	List(ctx context.Context, includeInactive bool) ([]gateway.Gateway, error)
	Toggle(ctx context.Context, id string, enabled bool) (gateway.Gateway, error)
	MarkSeen(ctx context.Context, id string)
}

// Config tunes the probe loop. FailureThreshold of -1 disables
// auto-deactivation: the counter still advances but never triggers.
type Config struct {
	Interval         time.Duration
	ProbeTimeout     time.Duration
	FailureThreshold int
}

// Monitor runs the health loop described in spec.md §4.5.
type Monitor struct {
	registry Registry
	elector  leaderelect.Elector
	cfg      Config

	mu       sync.Mutex
	failures map[string]int

	log zerolog.Logger
}

// New builds a Monitor. It does not start probing until Run is called.
func New(registry Registry, elector leaderelect.Elector, cfg Config) *Monitor {
	return &Monitor{
		registry: registry,
		elector:  elector,
		cfg:      cfg,
		failures: make(map[string]int),
		log:      log.WithComponent("health-monitor"),
	}
}

// Run blocks, executing one cycle per Interval until ctx is cancelled. A
// cycle that finds this process is not leader is skipped entirely; any
// in-flight probe is abandoned on cancellation without blocking shutdown
// longer than one probe's timeout.
func (m *Monitor) Run(ctx context.Context) {
	ticker := time.NewTicker(m.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if m.elector.IsLeader() {
				m.cycle(ctx)
			}
		}
	}
}

func (m *Monitor) cycle(ctx context.Context) {
	actives, err := m.registry.List(ctx, false)
	if err != nil {
		m.log.Warn().Err(err).Msg("failed to list active gateways")
		return
	}

	var wg sync.WaitGroup
	for _, g := range actives {
		wg.Add(1)
		go func(g gateway.Gateway) {
			defer wg.Done()
			m.probeOne(ctx, g)
		}(g)
	}
	wg.Wait()
}

func (m *Monitor) probeOne(ctx context.Context, g gateway.Gateway) {
	checker := phealth.NewHTTPChecker(g.URL).WithTimeout(m.cfg.ProbeTimeout)
	if headers, err := auth.Encode(g.AuthType, g.AuthValue); err == nil {
		for key, values := range headers {
			if len(values) > 0 {
				checker.WithHeader(key, values[0])
			}
		}
	}

	result := checker.Check(ctx)

	if result.Healthy {
		m.clearFailures(g.ID)
		m.registry.MarkSeen(ctx, g.ID)
		m.log.Debug().Str("gateway_id", g.ID).Str("gateway_name", g.Name).Msg("gateway health check succeeded")
		return
	}

	count := m.incrementFailure(g.ID)
	m.log.Debug().Str("gateway_id", g.ID).Str("gateway_name", g.Name).Int("consecutive_failures", count).Str("reason", result.Message).Msg("gateway health check failed")

	if m.cfg.FailureThreshold == -1 || count < m.cfg.FailureThreshold {
		return
	}

	m.clearFailures(g.ID)
	if _, err := m.registry.Toggle(ctx, g.ID, false); err != nil {
		m.log.Warn().Err(err).Str("gateway_id", g.ID).Msg("failed to auto-deactivate unhealthy gateway")
		return
	}
	m.log.Warn().Str("gateway_id", g.ID).Str("gateway_name", g.Name).Int("threshold", m.cfg.FailureThreshold).Msg("gateway deactivated after consecutive health check failures")
}

func (m *Monitor) incrementFailure(id string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failures[id]++
	return m.failures[id]
}

func (m *Monitor) clearFailures(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.failures, id)
}

// FailureCount reports the current consecutive-failure count for a gateway,
// for tests and diagnostics.
func (m *Monitor) FailureCount(id string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.failures[id]
}
