// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	WorkerJobsCompleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_completed_total",
			Help: "Total number of jobs completed by worker",
		},
		[]string{"task_type"},
	)

	WorkerJobsFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_failed_total",
			Help: "Total number of jobs failed by worker",
		},
		[]string{"task_type", "error_code"},
	)

	WorkerJobDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "worker_job_duration_seconds",
			Help: "Duration of job processing in seconds",
		},
		[]string{"task_type"},
	)

	WorkerJobsActive = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "worker_jobs_active",
			Help: "Number of active jobs per worker",
		},
		[]string{"task_type"},
	)

	ProviderAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "assistant_provider_attempts_total",
			Help: "LLM provider attempts by outcome",
		},
		[]string{"provider", "outcome"},
	)

	IntentResolutions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "assistant_intent_resolutions_total",
			Help: "Resolved intents by the stage that produced them",
		},
		[]string{"source", "intent"},
	)

	CacheRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "shopping_cache_requests_total",
			Help: "Product cache lookups by result",
		},
		[]string{"result"},
	)

	SourceProducts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "shopping_source_products_total",
			Help: "Products returned by each product source",
		},
		[]string{"source"},
	)

	ProductsReturned = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "shopping_products_returned",
			Help:    "Number of products returned per aggregation",
			Buckets: []float64{0, 1, 3, 5, 10, 20, 40},
		},
	)
)
