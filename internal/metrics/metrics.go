// Package metrics provides the Prometheus registry for the rating and edge services.
package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "sportsedge"

var (
	registry *prometheus.Registry
	once     sync.Once
)

// Counter metrics
var (
	RatingUpdatesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "rating_updates_total",
		Help:      "Total number of team rating updates applied",
	}, []string{"sport"})
	PredictionsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "predictions_total",
		Help:      "Total number of predictions generated",
	}, []string{"sport"})
	FailuresTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "failures_total",
		Help:      "Total number of failed operations by stage and error kind",
	}, []string{"stage", "kind"})
	OddsFetchesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "odds_fetches_total",
		Help:      "Total number of odds provider requests by result",
	}, []string{"sport", "result"})
)

// Histogram metrics
var (
	BatchDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "prediction_batch_duration_seconds",
		Help:      "Duration of prediction batches in seconds",
		Buckets:   prometheus.DefBuckets,
	}, []string{"sport"})
	PredictionConfidence = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "prediction_confidence",
		Help:      "Confidence scores of generated predictions",
		Buckets:   []float64{0.5, 0.6, 0.7, 0.8, 0.9, 0.95, 1.0},
	})
)

// InitRegistry initializes the global Prometheus registry.
func InitRegistry() *prometheus.Registry {
	once.Do(func() {
		registry = prometheus.NewRegistry()

		registry.MustRegister(RatingUpdatesTotal)
		registry.MustRegister(PredictionsTotal)
		registry.MustRegister(FailuresTotal)
		registry.MustRegister(OddsFetchesTotal)

		registry.MustRegister(BatchDuration)
		registry.MustRegister(PredictionConfidence)

		registry.MustRegister(EdgesDetectedTotal)
		registry.MustRegister(EdgeMagnitude)
		registry.MustRegister(EdgesPublishedTotal)
	})
	return registry
}

// GetRegistry returns the global Prometheus registry.
func GetRegistry() *prometheus.Registry {
	return InitRegistry()
}

// Handler returns the Prometheus HTTP handler.
func Handler() http.Handler {
	return promhttp.HandlerFor(GetRegistry(), promhttp.HandlerOpts{})
}

// RecordRatingUpdate records one team rating update.
func RecordRatingUpdate(sport string) {
	RatingUpdatesTotal.WithLabelValues(sport).Inc()
}

// RecordPrediction records a generated prediction and its confidence.
func RecordPrediction(sport string, confidence float64) {
	PredictionsTotal.WithLabelValues(sport).Inc()
	PredictionConfidence.Observe(confidence)
}

// RecordFailure records a failed operation. kind is a short error class such
// as missing_input or invalid_odds.
func RecordFailure(stage, kind string) {
	FailuresTotal.WithLabelValues(stage, kind).Inc()
}

// RecordOddsFetch records an odds provider request.
func RecordOddsFetch(sport, result string) {
	OddsFetchesTotal.WithLabelValues(sport, result).Inc()
}

// RecordBatchDuration records the duration of a prediction batch.
func RecordBatchDuration(sport string, durationSeconds float64) {
	BatchDuration.WithLabelValues(sport).Observe(durationSeconds)
}
