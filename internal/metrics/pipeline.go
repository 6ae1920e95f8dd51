package metrics

import "github.com/prometheus/client_golang/prometheus"

// Ingestion and extraction Prometheus metrics.
var (
	ExtractionFailuresTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "docdex",
			Name:      "extraction_failures_total",
			Help:      "Total number of documents whose text extraction failed and yielded empty text",
		},
		[]string{"format"},
	)

	IngestDocumentsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "docdex",
			Name:      "ingest_documents_total",
			Help:      "Total number of ingested documents by final status",
		},
		[]string{"status"}, // "indexed" / "failed" / "rejected"
	)

	IngestChunksTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "docdex",
			Name:      "ingest_chunks_total",
			Help:      "Total number of chunks persisted by ingestion",
		},
	)

	IngestDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "docdex",
			Name:      "ingest_duration_seconds",
			Help:      "Document ingestion duration in seconds",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
	)
)

var pipelineMetricsRegistered bool

// RegisterPipelineMetrics registers ingestion and extraction metrics. Must be called once from main.
func RegisterPipelineMetrics() {
	if pipelineMetricsRegistered {
		return
	}
	prometheus.MustRegister(ExtractionFailuresTotal)
	prometheus.MustRegister(IngestDocumentsTotal)
	prometheus.MustRegister(IngestChunksTotal)
	prometheus.MustRegister(IngestDuration)
	pipelineMetricsRegistered = true
}
