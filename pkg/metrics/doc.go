/*
Package metrics provides Prometheus metrics collection and exposition for
gatefed.

The metrics package defines and registers every gatefed metric using the
Prometheus client library. Metrics are exposed via an HTTP endpoint for
scraping by Prometheus servers.

Only the gauges the Collector polls are updated within gatefed:
gatefed_gateways_total, gatefed_active_url_set_size,
gatefed_event_subscribers_total, and gatefed_leader_status. The counters
and histograms below (events published/dropped, health checks, cycle
duration, deactivations, forwarding, probe duration) are registered and
exported but no gatefed component increments or observes them, so they
stay at zero.

# Metrics Catalog

Registry Metrics:

gatefed_gateways_total{enabled}:
  - Type: Gauge
  - Description: Total registered gateways by enabled state
  - Labels: enabled ("true"/"false")

gatefed_active_url_set_size:
  - Type: Gauge
  - Description: Number of URLs currently in the active-gateway cache

Event Bus Metrics:

gatefed_event_subscribers_total:
  - Type: Gauge
  - Description: Number of live event bus subscribers

gatefed_events_published_total{type}:
  - Type: Counter
  - Description: Total lifecycle events published, by type

gatefed_events_dropped_total{type}:
  - Type: Counter
  - Description: Total events dropped due to a full subscriber buffer

Health Check Metrics:

gatefed_health_checks_total{outcome}:
  - Type: Counter
  - Description: Total gateway health probes, by outcome ("ok"/"fail")

gatefed_health_check_duration_seconds:
  - Type: Histogram
  - Description: Time taken for one full health-check cycle across all
    active gateways

gatefed_gateways_deactivated_total:
  - Type: Counter
  - Description: Total gateways auto-deactivated after crossing the
    failure threshold

Leader Election Metrics:

gatefed_leader_status:
  - Type: Gauge
  - Description: Whether this process currently holds the health-loop
    leadership (1 = leader, 0 = follower)

Forwarding Metrics:

gatefed_forward_requests_total{outcome}:
  - Type: Counter
  - Description: Total forwarded JSON-RPC calls, by outcome

gatefed_forward_duration_seconds{outcome}:
  - Type: Histogram
  - Description: Forwarded JSON-RPC call duration in seconds

Probe Metrics:

gatefed_probe_duration_seconds:
  - Type: Histogram
  - Description: Time taken to probe an upstream gateway's MCP session
    during register/update/toggle

# Usage

	import "github.com/toolmesh/gatefed/pkg/metrics"

	metrics.GatewaysTotal.WithLabelValues("true").Set(5)
	metrics.EventsPublishedTotal.WithLabelValues("gateway_added").Inc()

	timer := metrics.NewTimer()
	// ... run a health check cycle ...
	timer.ObserveDuration(metrics.HealthCheckDuration)

	http.Handle("/metrics", metrics.Handler())

# Design Patterns

Package Init Registration:
  - All metrics registered in init(); MustRegister panics on duplicate
    registration, so a collision is a build-time discovery, not a
    runtime surprise.

Label Discipline:
  - Labels are bounded enums (enabled state, event type, outcome), never
    gateway IDs or URLs — keeps cardinality flat regardless of fleet size.

# See Also

  - Prometheus client library: https://github.com/prometheus/client_golang
*/
package metrics
