package solver

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/brunokim/sasp/resolve"
)

// metrics accumulates search statistics of every query run by a solver.
type metrics struct {
	registry *prometheus.Registry

	// queries counts queries by outcome.
	queries *prometheus.CounterVec
	// events counts resolver events by kind.
	events *prometheus.CounterVec
	// duration tracks the time to find each model, or to exhaust the search.
	duration prometheus.Histogram
}

func newMetrics() *metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)
	return &metrics{
		registry: reg,
		queries: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "sasp_queries_total",
			Help: "Total queries run by outcome",
		}, []string{"outcome"}),
		events: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "sasp_search_events_total",
			Help: "Total search events by kind",
		}, []string{"event"}),
		duration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "sasp_search_duration_seconds",
			Help:    "Search duration until the next model in seconds",
			Buckets: prometheus.ExponentialBuckets(0.0001, 4, 10), // 0.1ms to ~26s
		}),
	}
}

func (m *metrics) observe(start time.Time) {
	m.duration.Observe(time.Since(start).Seconds())
}

// add records the statistics of a finished machine.
func (m *metrics) add(stats resolve.Stats) {
	m.events.WithLabelValues("step").Add(float64(stats.Steps))
	m.events.WithLabelValues("backtrack").Add(float64(stats.Backtracks))
	m.events.WithLabelValues("coinductive").Add(float64(stats.Coinductive))
	m.events.WithLabelValues("reuse").Add(float64(stats.Reuses))
	m.events.WithLabelValues("candidate").Add(float64(stats.Candidates))
	m.events.WithLabelValues("model").Add(float64(stats.Models))
}

func (m *metrics) finish(outcome string) {
	m.queries.WithLabelValues(outcome).Inc()
}

func (m *metrics) write(path string) error {
	return prometheus.WriteToTextfile(path, m.registry)
}
