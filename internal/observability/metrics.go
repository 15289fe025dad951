package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "weather_predictor"

// Submission outcomes recorded on SubmissionsTotal
const (
	OutcomeResolved        = "resolved"
	OutcomeRejected        = "rejected"
	OutcomeStorageError    = "storage_error"
	OutcomePredictionError = "prediction_error"
	OutcomeUpdateError     = "update_error"
)

// Metrics holds the Prometheus collectors for the record-and-predict pipeline.
type Metrics struct {
	SubmissionsTotal   *prometheus.CounterVec // labels: outcome
	PredictionDuration prometheus.Histogram
	UpdatedRows        prometheus.Histogram
	ModelLoaded        prometheus.Gauge
}

// NewMetrics creates and registers all pipeline metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.SubmissionsTotal,
		m.PredictionDuration,
		m.UpdatedRows,
		m.ModelLoaded,
	)
	return m
}

// NewMetricsForTesting creates Metrics without registering them, so tests can
// build as many pipelines as they like.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		SubmissionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "submissions_total",
			Help:      "Observation submissions by outcome.",
		}, []string{"outcome"}),
		PredictionDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "prediction_duration_seconds",
			Help:      "Time spent in the classifier per submission.",
			Buckets:   []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		}),
		UpdatedRows: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "update_rows",
			Help:      "Rows matched when back-filling a predicted label.",
			Buckets:   []float64{0, 1, 2, 5, 10},
		}),
		ModelLoaded: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "model_loaded",
			Help:      "1 once the classifier is ready.",
		}),
	}
}
