package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the cleaning service.
type Metrics struct {
	DatasetsCleaned prometheus.Counter
	CleanErrors     prometheus.Counter
	RowsProcessed   prometheus.Counter
	CleanDuration   prometheus.Histogram

	// Correction outcomes.
	PrecipValues *prometheus.CounterVec // labels: stage={undercatch,wetting_loss}, outcome={corrected,retained,discarded,missing}
	WindNulled   *prometheus.CounterVec // labels: reason={ceiling,stuck}

	// Aggregation.
	PeriodsAggregated  prometheus.Counter
	PeriodsInvalidated prometheus.Counter

	// Kafka sink.
	RecordsPublished prometheus.Counter
	PublishErrors    prometheus.Counter
	SinkEnabled      prometheus.Gauge
}

// NewMetrics creates and registers all service metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.DatasetsCleaned,
		m.CleanErrors,
		m.RowsProcessed,
		m.CleanDuration,
		m.PrecipValues,
		m.WindNulled,
		m.PeriodsAggregated,
		m.PeriodsInvalidated,
		m.RecordsPublished,
		m.PublishErrors,
		m.SinkEnabled,
	)
	return m
}

// NewMetricsForTesting creates Metrics without registering them, to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		DatasetsCleaned: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "wx_clean",
			Name:      "datasets_cleaned_total",
			Help:      "Total station datasets run through the cleaning chain.",
		}),
		CleanErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "wx_clean",
			Name:      "clean_errors_total",
			Help:      "Total cleaning runs rejected for usage or configuration errors.",
		}),
		RowsProcessed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "wx_clean",
			Name:      "rows_processed_total",
			Help:      "Total time-series rows cleaned.",
		}),
		CleanDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "wx_clean",
			Name:      "clean_duration_seconds",
			Help:      "Duration of a complete cleaning run.",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		}),
		PrecipValues: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "wx_clean",
			Name:      "precip_values_total",
			Help:      "Precipitation values by correction stage and outcome.",
		}, []string{"stage", "outcome"}),
		WindNulled: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "wx_clean",
			Name:      "wind_nulled_total",
			Help:      "Wind-speed readings removed by reason.",
		}, []string{"reason"}),
		PeriodsAggregated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "wx_clean",
			Name:      "periods_aggregated_total",
			Help:      "Total aggregation periods produced.",
		}),
		PeriodsInvalidated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "wx_clean",
			Name:      "periods_invalidated_total",
			Help:      "Aggregation periods withheld for insufficient coverage.",
		}),
		RecordsPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "wx_clean",
			Name:      "records_published_total",
			Help:      "Total cleaned records written to the sink topic.",
		}),
		PublishErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "wx_clean",
			Name:      "publish_errors_total",
			Help:      "Failed publish attempts to the sink topic.",
		}),
		SinkEnabled: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "wx_clean",
			Name:      "sink_enabled",
			Help:      "1 when cleaned records are published to Kafka, 0 otherwise.",
		}),
	}
}
