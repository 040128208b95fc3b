package telemetry

// SLI metric names used for instrumentation.
const (
	// Latency
	MetricAPILatencyP50 = "api.latency.p50"
	MetricAPILatencyP95 = "api.latency.p95"
	MetricAPILatencyP99 = "api.latency.p99"

	// Throughput
	MetricRequestsPerSec = "api.requests_per_second"

	// Availability
	MetricUptime = "service.uptime_percentage"

	// Business
	MetricToursPublished       = "business.tours_published"
	MetricNarrationsGenerated  = "business.narrations_generated"
	MetricNarrationCacheRatio  = "business.narration_cache_hit_ratio"
	MetricNearbyQueriesPerSec  = "business.nearby_queries_per_second"
	MetricFeedbackPendingCount = "business.feedback_pending"
)
