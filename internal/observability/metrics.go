package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the
// risk pipeline.
type Metrics struct {
	ShipmentsProcessed prometheus.Counter
	ShipmentsFailed    prometheus.Counter
	ValidationFailures prometheus.Counter
	InFlightBatches    prometheus.Gauge

	// Batch processing metrics.
	BatchSize     prometheus.Histogram
	BatchDuration prometheus.Histogram

	// Per-stage and capability metrics.
	StageErrors        *prometheus.CounterVec   // labels: stage
	CapabilityRequests *prometheus.CounterVec   // labels: capability, outcome={success,error,empty}
	CapabilityDuration *prometheus.HistogramVec // labels: capability
	GeocodeCache       *prometheus.CounterVec   // labels: result={hit,miss}
}

// NewMetrics creates and registers all pipeline metrics with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.ShipmentsProcessed,
		m.ShipmentsFailed,
		m.ValidationFailures,
		m.InFlightBatches,
		m.BatchSize,
		m.BatchDuration,
		m.StageErrors,
		m.CapabilityRequests,
		m.CapabilityDuration,
		m.GeocodeCache,
	)
	return m
}

// NewMetricsForTesting creates Metrics without registering them, avoiding
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		ShipmentsProcessed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "cargosense",
			Name:      "shipments_processed_total",
			Help:      "Total shipments that completed the full enrichment pipeline.",
		}),
		ShipmentsFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "cargosense",
			Name:      "shipments_failed_total",
			Help:      "Total shipments that failed with a record-scoped error.",
		}),
		ValidationFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "cargosense",
			Name:      "validation_failures_total",
			Help:      "Total batches rejected by input validation.",
		}),
		InFlightBatches: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "cargosense",
			Name:      "in_flight_batches",
			Help:      "Number of batches currently being processed.",
		}),
		BatchSize: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "cargosense",
			Name:      "batch_size",
			Help:      "Number of shipments per submitted batch.",
			Buckets:   []float64{1, 5, 10, 20, 30, 40, 50, 75, 100},
		}),
		BatchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "cargosense",
			Name:      "batch_duration_seconds",
			Help:      "Duration of a complete batch enrichment cycle.",
			Buckets:   []float64{0.05, 0.1, 0.5, 1, 2.5, 5, 10, 30, 60},
		}),
		StageErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "cargosense",
			Name:      "stage_errors_total",
			Help:      "Record-scoped stage failures by stage.",
		}, []string{"stage"}),
		CapabilityRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "cargosense",
			Name:      "capability_requests_total",
			Help:      "External capability requests by capability and outcome.",
		}, []string{"capability", "outcome"}),
		CapabilityDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "cargosense",
			Name:      "capability_duration_seconds",
			Help:      "External capability request duration in seconds.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"capability"}),
		GeocodeCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "cargosense",
			Name:      "geocode_cache_total",
			Help:      "Geocode cache lookups by result.",
		}, []string{"result"}),
	}
}
