package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RedisErrorRate counts Redis errors by operation type.
	RedisErrorRate = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "truthfeed_redis_error_rate_total",
		Help: "Total number of Redis errors by operation type",
	}, []string{"operation"})

	// DatabaseQueryLatency records database query latency by operation and table.
	DatabaseQueryLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "truthfeed_database_query_latency_seconds",
		Help:    "Database query latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation", "table"})

	// RepositoryErrors counts classified repository errors.
	RepositoryErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "truthfeed_repository_errors_total",
		Help: "Total number of repository errors by table and code",
	}, []string{"table", "code"})

	// GenerationRequests counts chat-completion calls by step and outcome.
	GenerationRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "truthfeed_generation_requests_total",
		Help: "Total number of generation requests by step and outcome",
	}, []string{"step", "outcome"})

	// GenerationLatency records chat-completion latency.
	GenerationLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "truthfeed_generation_latency_seconds",
		Help:    "Generation request latency in seconds",
		Buckets: []float64{0.25, 0.5, 1, 2, 5, 10, 20, 40, 60},
	}, []string{"step"})

	// InteractionsRecorded counts appended interaction rows by kind and reaction.
	InteractionsRecorded = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "truthfeed_interactions_recorded_total",
		Help: "Total number of interaction rows appended",
	}, []string{"kind", "reaction"})

	// PostCacheLookups counts post cache hits and misses.
	PostCacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "truthfeed_post_cache_lookups_total",
		Help: "Post cache lookups by result",
	}, []string{"result"})
)

// TrackQuery returns a function that records query latency when called (e.g. defer).
func TrackQuery(operation, table string) func() {
	start := time.Now()
	return func() {
		DatabaseQueryLatency.WithLabelValues(operation, table).Observe(time.Since(start).Seconds())
	}
}

// TrackGeneration returns a function that records generation latency and outcome.
func TrackGeneration(step string) func(outcome string) {
	start := time.Now()
	return func(outcome string) {
		GenerationLatency.WithLabelValues(step).Observe(time.Since(start).Seconds())
		GenerationRequests.WithLabelValues(step, outcome).Inc()
	}
}
