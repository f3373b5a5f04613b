package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	EdgesDetectedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "edges_detected_total",
		Help:      "Total number of edges detected by severity",
	}, []string{"sport", "severity"})

	EdgesPublishedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "edges_published_total",
		Help:      "Total number of edges delivered by sink and result",
	}, []string{"sink", "result"})

	EdgeMagnitude = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "edge_magnitude",
		Help:      "Absolute magnitude of dominant edges",
		Buckets:   []float64{0.01, 0.02, 0.04, 0.08, 0.12, 0.15, 0.2, 0.3, 0.5},
	}, []string{"sport"})
)

// RecordEdge records a detected edge.
func RecordEdge(sport, severity string, magnitude float64) {
	EdgesDetectedTotal.WithLabelValues(sport, severity).Inc()
	EdgeMagnitude.WithLabelValues(sport).Observe(magnitude)
}

// RecordEdgeDelivery records an edge handed to a sink (redis, telegram, websocket).
func RecordEdgeDelivery(sink string, err error) {
	result := "success"
	if err != nil {
		result = "error"
	}
	EdgesPublishedTotal.WithLabelValues(sink, result).Inc()
}
