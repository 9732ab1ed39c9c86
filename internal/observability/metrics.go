package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "rally_detour"

// Metrics holds the Prometheus counters, histograms, and gauges for the service.
type Metrics struct {
	// Source table metrics.
	TableLoads  *prometheus.CounterVec // labels: source, result={loaded,cached,missing,error}
	RowsDropped *prometheus.CounterVec // labels: source
	TableRows   *prometheus.GaugeVec   // labels: source
	DataReady   prometheus.Gauge

	// Feedback log metrics.
	FeedbackAppends *prometheus.CounterVec // labels: outcome={stored,duplicate,invalid,error}
	FeedbackEvents  *prometheus.CounterVec // labels: outcome={success,error}

	// Route lookup metrics.
	RouteLookups        *prometheus.CounterVec // labels: outcome={success,error,empty}
	RouteCache          *prometheus.CounterVec // labels: layer={memory,redis}, result={hit,miss}
	RouteLookupDuration prometheus.Histogram
}

// NewMetrics creates and registers all service metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.TableLoads,
		m.RowsDropped,
		m.TableRows,
		m.DataReady,
		m.FeedbackAppends,
		m.FeedbackEvents,
		m.RouteLookups,
		m.RouteCache,
		m.RouteLookupDuration,
	)
	return m
}

// NewMetricsForTesting creates unregistered Metrics to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		TableLoads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "table_loads_total",
			Help:      "Source table loads by source and result.",
		}, []string{"source", "result"}),
		RowsDropped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rows_dropped_total",
			Help:      "Source rows dropped because a required value could not be parsed.",
		}, []string{"source"}),
		TableRows: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "table_rows",
			Help:      "Rows in the current snapshot of each source table.",
		}, []string{"source"}),
		DataReady: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "data_ready",
			Help:      "1 once the event table has loaded, 0 otherwise.",
		}),
		FeedbackAppends: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "feedback_appends_total",
			Help:      "Feedback append attempts by outcome.",
		}, []string{"outcome"}),
		FeedbackEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "feedback_events_total",
			Help:      "Feedback records published to the event topic by outcome.",
		}, []string{"outcome"}),
		RouteLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "route_lookups_total",
			Help:      "Remote route lookups by outcome.",
		}, []string{"outcome"}),
		RouteCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "route_cache_total",
			Help:      "Route lookup cache probes by layer and result.",
		}, []string{"layer", "result"}),
		RouteLookupDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "route_lookup_duration_seconds",
			Help:      "Remote route lookup request duration in seconds.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}),
	}
}
