package metrics

import "github.com/prometheus/client_golang/prometheus"

// Retrieval Prometheus metrics.
var (
	RetrievalDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "docdex",
			Name:      "retrieval_duration_seconds",
			Help:      "Retrieval duration in seconds",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
		[]string{"operation"}, // "search" / "chat_context"
	)

	RetrievalCorpusChunks = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "docdex",
			Name:      "retrieval_corpus_chunks",
			Help:      "Number of chunks scored by the most recent retrieval",
		},
	)
)

var retrievalMetricsRegistered bool

// RegisterRetrievalMetrics registers retrieval metrics. Must be called once from main.
func RegisterRetrievalMetrics() {
	if retrievalMetricsRegistered {
		return
	}
	prometheus.MustRegister(RetrievalDuration)
	prometheus.MustRegister(RetrievalCorpusChunks)
	retrievalMetricsRegistered = true
}
