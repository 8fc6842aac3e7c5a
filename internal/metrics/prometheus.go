package metrics

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	AskDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "complaint_intel_ask_duration_seconds",
			Help:    "Ask processing duration in seconds",
			Buckets: []float64{0.1, 0.5, 1, 2, 5, 10},
		},
	)

	AskTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "complaint_intel_ask_total",
			Help: "Total number of questions processed",
		},
		[]string{"status"},
	)

	IntentTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "complaint_intel_intent_total",
			Help: "Questions processed by detected intent",
		},
		[]string{"intent"},
	)

	ConfidenceScore = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "complaint_intel_confidence_score",
			Help:    "Composite confidence scores",
			Buckets: []float64{10, 20, 30, 40, 50, 60, 70, 80, 90, 100},
		},
	)

	RetrievedCount = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "complaint_intel_retrieved_count",
			Help:    "Evidence items retrieved per question",
			Buckets: []float64{0, 1, 2, 5, 8, 10, 20},
		},
	)

	CacheHits = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "complaint_intel_cache_hits_total",
			Help: "Total cache hits",
		},
		[]string{"cache_type"},
	)

	CacheMisses = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "complaint_intel_cache_misses_total",
			Help: "Total cache misses",
		},
		[]string{"cache_type"},
	)

	ComplaintsIngested = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "complaint_intel_complaints_ingested_total",
			Help: "Total complaints ingested",
		},
	)

	ChunksIndexed = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "complaint_intel_chunks_indexed_total",
			Help: "Total narrative chunks written to the vector store",
		},
	)
)

func Init() {
	prometheus.MustRegister(AskDuration)
	prometheus.MustRegister(AskTotal)
	prometheus.MustRegister(IntentTotal)
	prometheus.MustRegister(ConfidenceScore)
	prometheus.MustRegister(RetrievedCount)
	prometheus.MustRegister(CacheHits)
	prometheus.MustRegister(CacheMisses)
	prometheus.MustRegister(ComplaintsIngested)
	prometheus.MustRegister(ChunksIndexed)
}

func MetricsHandler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.Handler())
}
