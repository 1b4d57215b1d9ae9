package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Service metrics, registered on the default registry.
var (
	// Pipeline metrics
	PipelineRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "supportdesk_pipeline_runs_total",
			Help: "Pipeline runs by outcome (ok or failure kind)",
		},
		[]string{"outcome"},
	)

	StageDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "supportdesk_stage_duration_seconds",
			Help:    "Duration of classification and synthesis stages",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 10), // 100ms to ~1min
		},
		[]string{"stage"},
	)

	FallbackTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "supportdesk_solutions_total",
			Help: "Accepted solutions by whether fallback generation was used",
		},
		[]string{"used_fallback"},
	)

	// Knowledge base metrics
	KnowledgeLookupsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "supportdesk_knowledge_lookups_total",
			Help: "Knowledge base lookups by result (hit, miss, skipped)",
		},
		[]string{"result"},
	)

	KnowledgeEntries = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "supportdesk_knowledge_entries",
			Help: "Rows loaded into the knowledge base",
		},
	)

	// LLM metrics
	LLMRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "supportdesk_llm_requests_total",
			Help: "Total number of generation requests",
		},
		[]string{"model", "stage", "status"},
	)

	LLMRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "supportdesk_llm_request_duration_seconds",
			Help:    "Generation request duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 10),
		},
		[]string{"model"},
	)

	// HTTP metrics
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "supportdesk_http_requests_total",
			Help: "HTTP requests by route and status code",
		},
		[]string{"route", "code"},
	)

	ClientThrottledTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "supportdesk_client_throttled_total",
			Help: "Requests rejected by the per-client rate limiter",
		},
	)
)
