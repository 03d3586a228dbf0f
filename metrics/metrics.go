package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Collector owns a private prometheus registry with the scheduler's load
// gauges and counters. The scheduler keeps it in sync with its own
// bookkeeping; the diagnostics server serves it on /metrics.
type Collector struct {
	registry *prometheus.Registry

	loading       *prometheus.GaugeVec
	queued        *prometheus.GaugeVec
	registrations prometheus.Counter
	completions   *prometheus.CounterVec
}

// NewCollector initializes the registry and metric families.
func NewCollector() *Collector {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	return &Collector{
		registry: registry,
		loading: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "loader_loading_requests",
			Help: "Resource fetches currently in flight, by origin.",
		}, []string{"origin"}),
		queued: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "loader_queued_requests",
			Help: "Resource fetches waiting for an admission slot, by origin.",
		}, []string{"origin"}),
		registrations: factory.NewCounter(prometheus.CounterOpts{
			Name: "loader_registrations_total",
			Help: "Total resource registrations accepted by the scheduler.",
		}),
		completions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "loader_completions_total",
			Help: "Total fetch completions reported by the transport.",
		}, []string{"outcome"}),
	}
}

// Registry exposes the private registry for the /metrics handler.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// SetLoading records the in-flight count for an origin.
func (c *Collector) SetLoading(origin string, n int) {
	c.loading.WithLabelValues(origin).Set(float64(n))
}

// SetQueued records the waiting count for an origin.
func (c *Collector) SetQueued(origin string, n int) {
	c.queued.WithLabelValues(origin).Set(float64(n))
}

// IncRegistrations counts an accepted registration.
func (c *Collector) IncRegistrations() {
	c.registrations.Inc()
}

// IncCompletions counts a completion by outcome.
func (c *Collector) IncCompletions(success bool) {
	outcome := "success"
	if !success {
		outcome = "failure"
	}
	c.completions.WithLabelValues(outcome).Inc()
}

// ResetGauges zeroes the per-origin load gauges after a scheduler reset.
// Counters keep their lifetime totals.
func (c *Collector) ResetGauges() {
	c.loading.Reset()
	c.queued.Reset()
}
