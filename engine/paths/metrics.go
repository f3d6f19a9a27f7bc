package paths

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

// Request outcomes reported by the requests counter
const (
	OutcomeFound     = "found"
	OutcomeNoPath    = "no_path"
	OutcomeTrivial   = "trivial"
	OutcomeReused    = "reused"
	OutcomeCancelled = "cancelled"
)

// Metrics holds the manager's Prometheus collectors
type Metrics struct {
	Requests       *prometheus.CounterVec
	Dispatched     prometheus.Counter
	Discarded      prometheus.Counter
	SearchDuration prometheus.Histogram
	Pending        prometheus.Gauge
}

// NewMetrics creates the collectors and registers them on reg
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		Requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "paths",
			Name:      "requests_total",
			Help:      "Path requests resolved, by outcome.",
		}, []string{"outcome"}),
		Dispatched: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "paths",
			Name:      "jobs_dispatched_total",
			Help:      "Search jobs handed to the worker.",
		}),
		Discarded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "paths",
			Name:      "jobs_discarded_total",
			Help:      "Completed jobs dropped because their request was cancelled.",
		}),
		SearchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "paths",
			Name:      "search_duration_seconds",
			Help:      "Time spent in a bidirectional search.",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 2, 14),
		}),
		Pending: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "paths",
			Name:      "requests_pending",
			Help:      "Requests waiting for dispatch.",
		}),
	}
	for _, c := range []prometheus.Collector{m.Requests, m.Dispatched, m.Discarded, m.SearchDuration, m.Pending} {
		if err := reg.Register(c); err != nil {
			return nil, fmt.Errorf("register path metrics: %w", err)
		}
	}
	return m, nil
}

func (m *Metrics) outcome(o string) {
	if m != nil {
		m.Requests.WithLabelValues(o).Inc()
	}
}
