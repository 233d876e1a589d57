package metrics

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	QueryDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "math_agent_query_duration_seconds",
			Help:    "Query resolution duration in seconds",
			Buckets: []float64{0.1, 0.5, 1, 2, 5, 10},
		},
		[]string{"source_kind"},
	)

	QueryTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "math_agent_query_total",
			Help: "Total number of queries processed",
		},
		[]string{"status"},
	)

	RejectionTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "math_agent_rejection_total",
			Help: "Questions and answers rejected by the classifier",
		},
		[]string{"reason"},
	)

	ConfidenceScore = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "math_agent_confidence_score",
			Help:    "Answer confidence scores",
			Buckets: []float64{0.1, 0.2, 0.3, 0.4, 0.5, 0.6, 0.7, 0.8, 0.9, 1.0},
		},
	)

	KnowledgeConfidence = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "math_agent_knowledge_confidence",
			Help:    "Knowledge-store coverage confidence per query",
			Buckets: []float64{0.1, 0.2, 0.3, 0.4, 0.5, 0.6, 0.7, 0.8, 0.9, 1.0},
		},
	)

	WebSearchTriggered = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "math_agent_web_search_triggered_total",
			Help: "Total number of web searches triggered",
		},
	)

	FallbackUsed = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "math_agent_fallback_used_total",
			Help: "Answers served by the deterministic fallback solver",
		},
	)

	TokensUsed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "math_agent_llm_tokens_used",
			Help: "Total model tokens used",
		},
		[]string{"model", "type"},
	)

	CacheHits = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "math_agent_cache_hits_total",
			Help: "Total cache hits",
		},
		[]string{"cache_type"},
	)

	CacheMisses = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "math_agent_cache_misses_total",
			Help: "Total cache misses",
		},
		[]string{"cache_type"},
	)

	FeedbackTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "math_agent_feedback_total",
			Help: "Feedback submissions by type and outcome",
		},
		[]string{"type", "processed"},
	)

	KnowledgeEntriesTotal = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "math_agent_knowledge_entries_total",
			Help: "Total entries in the knowledge corpus",
		},
	)
)

func Init() {
	prometheus.MustRegister(QueryDuration)
	prometheus.MustRegister(QueryTotal)
	prometheus.MustRegister(RejectionTotal)
	prometheus.MustRegister(ConfidenceScore)
	prometheus.MustRegister(KnowledgeConfidence)
	prometheus.MustRegister(WebSearchTriggered)
	prometheus.MustRegister(FallbackUsed)
	prometheus.MustRegister(TokensUsed)
	prometheus.MustRegister(CacheHits)
	prometheus.MustRegister(CacheMisses)
	prometheus.MustRegister(FeedbackTotal)
	prometheus.MustRegister(KnowledgeEntriesTotal)
}

func MetricsHandler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.Handler())
}
