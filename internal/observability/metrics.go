package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "metar_minima"

// Metrics holds the Prometheus counters, histograms, and gauges for the service.
type Metrics struct {
	LinesRead          prometheus.Counter
	LinesRejected      prometheus.Counter
	VerdictsPublished  prometheus.Counter
	PipelineRunning    prometheus.Gauge
	DatasetObservation prometheus.Gauge

	// Batch processing metrics.
	BatchSize               prometheus.Histogram
	BatchProcessingDuration prometheus.Histogram

	ComplianceRatio *prometheus.GaugeVec   // labels: station, limit
	SunCache        *prometheus.CounterVec // labels: result={hit,miss}
}

func newMetrics() *Metrics {
	return &Metrics{
		LinesRead: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "lines_read_total",
			Help:      "Total non-blank METAR lines read from uploads.",
		}),
		LinesRejected: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "lines_rejected_total",
			Help:      "Total METAR lines dropped as unparseable.",
		}),
		VerdictsPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "verdicts_published_total",
			Help:      "Total analyzed observations written to the verdict sink.",
		}),
		PipelineRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "pipeline_running",
			Help:      "1 while an upload is being processed, 0 otherwise.",
		}),
		DatasetObservation: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "dataset_observations",
			Help:      "Number of observations in the current dataset.",
		}),
		BatchSize: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "batch_size",
			Help:      "Number of lines per batch read from an upload.",
			Buckets:   []float64{1, 5, 10, 20, 30, 40, 50, 75, 100},
		}),
		BatchProcessingDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "batch_processing_duration_seconds",
			Help:      "Duration of a complete parse-evaluate-publish cycle.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10},
		}),
		ComplianceRatio: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "compliance_percentage",
			Help:      "Share of relevant observations violating a limit, in percent.",
		}, []string{"station", "limit"}),
		SunCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sun_cache_total",
			Help:      "Sunrise/sunset cache lookups by result.",
		}, []string{"result"}),
	}
}

// NewMetrics creates and registers all metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(m.collectors()...)
	return m
}

// NewMetricsForTesting creates unregistered Metrics to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

// ObserveSunCache records a sun-time cache lookup.
func (m *Metrics) ObserveSunCache(hit bool) {
	if hit {
		m.SunCache.WithLabelValues("hit").Inc()
		return
	}
	m.SunCache.WithLabelValues("miss").Inc()
}

func (m *Metrics) collectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.LinesRead,
		m.LinesRejected,
		m.VerdictsPublished,
		m.PipelineRunning,
		m.DatasetObservation,
		m.BatchSize,
		m.BatchProcessingDuration,
		m.ComplianceRatio,
		m.SunCache,
	}
}
