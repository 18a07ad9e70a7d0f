package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	GatewaysTotal = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "gatefed_gateways_total",
			Help: "Total number of registered gateways by enabled state",
		},
		[]string{"enabled"},
	)

	ActiveURLSetSize = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "gatefed_active_url_set_size",
			Help: "Number of URLs currently in the active-gateway cache",
		},
	)

	SubscribersTotal = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "gatefed_event_subscribers_total",
			Help: "Number of live event bus subscribers",
		},
	)

	EventsPublishedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gatefed_events_published_total",
			Help: "Total number of lifecycle events published, by type",
		},
		[]string{"type"},
	)

	EventsDroppedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gatefed_events_dropped_total",
			Help: "Total number of events dropped due to a full subscriber buffer",
		},
		[]string{"type"},
	)

	HealthChecksTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gatefed_health_checks_total",
			Help: "Total number of gateway health probes, by outcome",
		},
		[]string{"outcome"},
	)

	HealthCheckDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "gatefed_health_check_duration_seconds",
			Help:    "Time taken for one full health-check cycle across all active gateways",
			Buckets: prometheus.DefBuckets,
		},
	)

	GatewaysDeactivatedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "gatefed_gateways_deactivated_total",
			Help: "Total number of gateways auto-deactivated after crossing the failure threshold",
		},
	)

	LeaderStatus = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "gatefed_leader_status",
			Help: "Whether this process currently holds the health-loop leadership (1 = leader, 0 = follower)",
		},
	)

	ForwardRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gatefed_forward_requests_total",
			Help: "Total number of forwarded JSON-RPC calls, by outcome",
		},
		[]string{"outcome"},
	)

	ForwardDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "gatefed_forward_duration_seconds",
			Help:    "Forwarded JSON-RPC call duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"outcome"},
	)

	ProbeDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "gatefed_probe_duration_seconds",
			Help:    "Time taken to probe an upstream gateway's MCP session during register/update/toggle",
			Buckets: prometheus.DefBuckets,
		},
	)
)

func init() {
	prometheus.MustRegister(
		GatewaysTotal,
		ActiveURLSetSize,
		SubscribersTotal,
		EventsPublishedTotal,
		EventsDroppedTotal,
		HealthChecksTotal,
		HealthCheckDuration,
		GatewaysDeactivatedTotal,
		LeaderStatus,
		ForwardRequestsTotal,
		ForwardDuration,
		ProbeDuration,
	)
}

// Handler returns the Prometheus scrape handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Timer is a small helper for timing an operation and observing its
// duration into a histogram once it completes.
type Timer struct {
	start time.Time
}

// NewTimer starts a timer.
func NewTimer() *Timer {
	return &Timer{start: time.Now()}
}

// ObserveDuration records the elapsed time to histogram.
func (t *Timer) ObserveDuration(histogram prometheus.Histogram) {
	histogram.Observe(time.Since(t.start).Seconds())
}

// ObserveDurationVec records the elapsed time to a labeled histogram.
func (t *Timer) ObserveDurationVec(histogram prometheus.ObserverVec, labels ...string) {
	histogram.WithLabelValues(labels...).Observe(time.Since(t.start).Seconds())
}

// Duration returns the elapsed time since the timer started.
func (t *Timer) Duration() time.Duration {
	return time.Since(t.start)
}
