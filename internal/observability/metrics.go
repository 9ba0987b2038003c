package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "temperature_dashboard"

// Metrics holds the Prometheus collectors for dataset loading and series
// derivation.
type Metrics struct {
	DatasetLoads        *prometheus.CounterVec // labels: outcome={success,error,stale}
	DatasetLoadDuration prometheus.Histogram
	DatasetRecords      prometheus.Gauge
	DatasetGeneration   prometheus.Gauge

	RowsAccepted prometheus.Counter
	RowsRejected prometheus.Counter

	SeriesComputed *prometheus.CounterVec // labels: granularity={monthly,daily}
	ChartsRendered *prometheus.CounterVec // labels: chart={line,bar}, format={png,svg}
}

func newMetrics() *Metrics {
	return &Metrics{
		DatasetLoads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "dataset_loads_total",
			Help:      "Dataset loads by outcome.",
		}, []string{"outcome"}),
		DatasetLoadDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "dataset_load_duration_seconds",
			Help:      "Duration of a dataset fetch, parse and validation.",
			Buckets:   []float64{0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}),
		DatasetRecords: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "dataset_records",
			Help:      "Number of validated records in the active dataset.",
		}),
		DatasetGeneration: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "dataset_generation",
			Help:      "Generation number of the active dataset.",
		}),
		RowsAccepted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rows_accepted_total",
			Help:      "CSV rows that passed validation.",
		}),
		RowsRejected: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rows_rejected_total",
			Help:      "CSV rows dropped by validation.",
		}),
		SeriesComputed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "series_computed_total",
			Help:      "Line chart series recomputations by granularity.",
		}, []string{"granularity"}),
		ChartsRendered: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "charts_rendered_total",
			Help:      "Chart images rendered by chart and format.",
		}, []string{"chart", "format"}),
	}
}

// NewMetrics creates and registers all metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()

	prometheus.MustRegister(
		m.DatasetLoads,
		m.DatasetLoadDuration,
		m.DatasetRecords,
		m.DatasetGeneration,
		m.RowsAccepted,
		m.RowsRejected,
		m.SeriesComputed,
		m.ChartsRendered,
	)

	return m
}

// NewMetricsForTesting creates unregistered Metrics to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}
