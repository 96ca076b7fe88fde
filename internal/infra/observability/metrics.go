// Package observability exposes the engine's Prometheus metrics. All series
// live under the "dotrep" namespace; the API server mounts the default
// registry at /metrics.
package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "dotrep"

// Metrics is the set of engine-level series. One instance per process;
// promauto registers against the default registry.
type Metrics struct {
	Computations    *prometheus.CounterVec
	ComputeDuration prometheus.Histogram
	CacheHits       prometheus.Counter
	CacheMisses     prometheus.Counter
	GlobalsRebuilds prometheus.Counter
	GraphNodes      prometheus.Gauge
	GraphEdges      prometheus.Gauge
	FlagsFiled      prometheus.Counter
	BrigadeAlerts   prometheus.Counter
	SybilRisk       prometheus.Histogram
	BatchSize       prometheus.Histogram
}

// New registers and returns the metric set.
func New() *Metrics {
	return &Metrics{
		Computations: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reputation_computations_total",
			Help:      "Reputation computations by outcome (ok, not_found, error).",
		}, []string{"outcome"}),
		ComputeDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "reputation_compute_seconds",
			Help:      "Wall time of single-actor reputation computations.",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 4, 10),
		}),
		CacheHits: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "result_cache_hits_total",
			Help:      "Per-actor result cache hits.",
		}),
		CacheMisses: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "result_cache_misses_total",
			Help:      "Per-actor result cache misses.",
		}),
		GlobalsRebuilds: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "graph_globals_rebuilds_total",
			Help:      "Full recomputations of graph-wide metrics.",
		}),
		GraphNodes: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "graph_nodes",
			Help:      "Actors currently in the trust graph.",
		}),
		GraphEdges: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "graph_edges",
			Help:      "Aggregated directed edges currently in the trust graph.",
		}),
		FlagsFiled: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "flags_filed_total",
			Help:      "Flag records accepted into the log.",
		}),
		BrigadeAlerts: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "coordination_alerts_total",
			Help:      "Coordinated-flagging alerts raised by insights runs.",
		}),
		SybilRisk: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "sybil_overall_risk",
			Help:      "Distribution of overall Sybil risk across assessments.",
			Buckets:   prometheus.LinearBuckets(0, 0.1, 11),
		}),
		BatchSize: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "batch_request_actors",
			Help:      "Actors per batch computation request.",
			Buckets:   []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000},
		}),
	}
}

// ObserveCompute records one computation with its outcome and duration.
func (m *Metrics) ObserveCompute(outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.Computations.WithLabelValues(outcome).Inc()
	m.ComputeDuration.Observe(d.Seconds())
}
