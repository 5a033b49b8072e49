package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	// RequestCount counts HTTP requests
	RequestCount = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	// RequestDuration measures HTTP request duration
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	// EvaluationCount counts essay evaluations by outcome
	EvaluationCount = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "essay_evaluations_total",
			Help: "Total number of essay evaluations",
		},
		[]string{"status"},
	)

	// EvaluationDuration measures end-to-end evaluation time
	EvaluationDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "essay_evaluation_duration_seconds",
			Help:    "Essay evaluation duration in seconds",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
	)

	// PlagiarismChecks counts similarity checks by suspicion level
	PlagiarismChecks = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "plagiarism_checks_total",
			Help: "Total number of plagiarism checks",
		},
		[]string{"suspicion_level"},
	)

	// CorpusSize tracks indexed documents per tenant
	CorpusSize = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "plagiarism_corpus_documents",
			Help: "Number of documents indexed for plagiarism detection",
		},
		[]string{"tenant"},
	)

	// StreamMessages counts consumed stream messages by outcome
	StreamMessages = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stream_messages_total",
			Help: "Total number of consumed stream messages",
		},
		[]string{"outcome"},
	)

	registerOnce sync.Once
)

// InitPrometheus registers all collectors with the default registry.
func InitPrometheus() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			RequestCount,
			RequestDuration,
			EvaluationCount,
			EvaluationDuration,
			PlagiarismChecks,
			CorpusSize,
			StreamMessages,
		)
	})
}
