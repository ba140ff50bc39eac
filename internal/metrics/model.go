package metrics

import "github.com/prometheus/client_golang/prometheus"

// Model and generation Prometheus metrics.
var (
	ModelRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "tutor",
			Name:      "model_requests_total",
			Help:      "Total number of language model requests",
		},
		[]string{"model", "kind", "status"},
	)

	ModelRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "tutor",
			Name:      "model_request_duration_seconds",
			Help:      "Language model request duration in seconds",
			Buckets:   []float64{0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		},
		[]string{"model", "kind"},
	)

	ModelTokensTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "tutor",
			Name:      "model_tokens_total",
			Help:      "Total model tokens consumed",
		},
		[]string{"model", "type"},
	)

	GenerationPhasesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "tutor",
			Name:      "generation_phases_total",
			Help:      "Generation phase outcomes",
		},
		[]string{"phase", "outcome"}, // outcome: "success" / "escalate" / "fatal"
	)

	RetrievalDocumentsReturned = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "tutor",
			Name:      "retrieval_documents_returned",
			Help:      "Number of documents returned per retrieval call",
			Buckets:   []float64{0, 1, 2, 5, 10, 15, 20},
		},
		[]string{"use"},
	)
)

var modelMetricsRegistered bool

// RegisterModelMetrics registers Prometheus model metrics. Must be called once from main.
func RegisterModelMetrics() {
	if modelMetricsRegistered {
		return
	}
	prometheus.MustRegister(ModelRequestsTotal)
	prometheus.MustRegister(ModelRequestDuration)
	prometheus.MustRegister(ModelTokensTotal)
	prometheus.MustRegister(GenerationPhasesTotal)
	prometheus.MustRegister(RetrievalDocumentsReturned)
	modelMetricsRegistered = true
}
