// Package metrics provides internal metrics collection.
// This package is internal and should not be imported by external projects.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"
)

// =============================================================================
// Collector
// =============================================================================

// Collector holds every Prometheus metric OpenSift's pipeline records,
// grouped by HTTP, LLM gateway, search fan-out, verification and
// classification concerns.
type Collector struct {
	// HTTP metrics
	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	httpRequestSize     *prometheus.HistogramVec
	httpResponseSize    *prometheus.HistogramVec

	// LLM gateway metrics
	llmRequestsTotal   *prometheus.CounterVec
	llmRequestDuration *prometheus.HistogramVec
	llmTokensUsed      *prometheus.CounterVec
	llmJSONRepairTotal *prometheus.CounterVec

	// Search fan-out metrics
	searchQueriesTotal    *prometheus.CounterVec
	searchDuration        *prometheus.HistogramVec
	searchResultsReturned *prometheus.HistogramVec
	adapterHealthy        *prometheus.GaugeVec

	// Verification metrics
	verifyAssessmentsTotal *prometheus.CounterVec
	verifyDuration         prometheus.Histogram
	verifyFallbacksTotal   *prometheus.CounterVec

	// Classification metrics
	classifyResultsTotal *prometheus.CounterVec

	logger *zap.Logger
}

// NewCollector registers and returns a new metrics Collector under namespace.
func NewCollector(namespace string, logger *zap.Logger) *Collector {
	c := &Collector{
		logger: logger.With(zap.String("component", "metrics")),
	}

	// HTTP metrics
	c.httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	c.httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	c.httpRequestSize = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_size_bytes",
			Help:      "HTTP request size in bytes",
			Buckets:   prometheus.ExponentialBuckets(100, 10, 8),
		},
		[]string{"method", "path"},
	)

	c.httpResponseSize = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_response_size_bytes",
			Help:      "HTTP response size in bytes",
			Buckets:   prometheus.ExponentialBuckets(100, 10, 8),
		},
		[]string{"method", "path"},
	)

	// LLM gateway metrics
	c.llmRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "llm_requests_total",
			Help:      "Total number of LLM gateway requests",
		},
		[]string{"role", "model", "status"}, // role: planner, verifier
	)

	c.llmRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "llm_request_duration_seconds",
			Help:      "LLM gateway request duration in seconds",
			Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60},
		},
		[]string{"role", "model"},
	)

	c.llmTokensUsed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "llm_tokens_used_total",
			Help:      "Total number of tokens used by the LLM gateway",
		},
		[]string{"role", "model", "type"}, // type: prompt, completion
	)

	c.llmJSONRepairTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "llm_json_repair_total",
			Help:      "Total number of structured LLM responses that required JSON repair",
		},
		[]string{"role", "outcome"}, // outcome: repaired, retried, failed
	)

	// Search fan-out metrics
	c.searchQueriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "search_queries_total",
			Help:      "Total number of adapter search queries issued",
		},
		[]string{"adapter", "status"},
	)

	c.searchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "search_duration_seconds",
			Help:      "Per-adapter search call duration in seconds",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
		},
		[]string{"adapter"},
	)

	c.searchResultsReturned = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "search_results_returned",
			Help:      "Number of results returned per search query",
			Buckets:   []float64{0, 1, 5, 10, 25, 50, 100, 250},
		},
		[]string{"adapter"},
	)

	c.adapterHealthy = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "adapter_healthy",
			Help:      "Adapter health check result (1 = healthy, 0 = unhealthy)",
		},
		[]string{"adapter"},
	)

	// Verification metrics
	c.verifyAssessmentsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "verify_assessments_total",
			Help:      "Total number of per-criterion assessments produced by the verifier",
		},
		[]string{"assessment"}, // met, not_met, uncertain
	)

	c.verifyDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "verify_duration_seconds",
			Help:      "Per-document verification duration in seconds",
			Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30},
		},
	)

	c.verifyFallbacksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "verify_fallbacks_total",
			Help:      "Total number of documents that fell back to heuristic validation",
		},
		[]string{"reason"},
	)

	// Classification metrics
	c.classifyResultsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "classify_results_total",
			Help:      "Total number of results classified, by classification",
		},
		[]string{"classification"}, // perfect, partial, reject
	)

	logger.Info("metrics collector initialized", zap.String("namespace", namespace))

	return c
}

// =============================================================================
// HTTP metrics
// =============================================================================

// RecordHTTPRequest records one completed HTTP request/response cycle.
func (c *Collector) RecordHTTPRequest(method, path string, status int, duration time.Duration, requestSize, responseSize int64) {
	c.httpRequestsTotal.WithLabelValues(method, path, statusCode(status)).Inc()
	c.httpRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
	c.httpRequestSize.WithLabelValues(method, path).Observe(float64(requestSize))
	c.httpResponseSize.WithLabelValues(method, path).Observe(float64(responseSize))
}

// =============================================================================
// LLM gateway metrics
// =============================================================================

// RecordLLMRequest records one LLM gateway call (planner or verifier role).
func (c *Collector) RecordLLMRequest(role, model, status string, duration time.Duration, promptTokens, completionTokens int) {
	c.llmRequestsTotal.WithLabelValues(role, model, status).Inc()
	c.llmRequestDuration.WithLabelValues(role, model).Observe(duration.Seconds())
	c.llmTokensUsed.WithLabelValues(role, model, "prompt").Add(float64(promptTokens))
	c.llmTokensUsed.WithLabelValues(role, model, "completion").Add(float64(completionTokens))
}

// RecordJSONRepair records the outcome of the gateway's JSON repair pipeline
// for one structured LLM response.
func (c *Collector) RecordJSONRepair(role, outcome string) {
	c.llmJSONRepairTotal.WithLabelValues(role, outcome).Inc()
}

// =============================================================================
// Search fan-out metrics
// =============================================================================

// RecordSearchQuery records one adapter search call.
func (c *Collector) RecordSearchQuery(adapter, status string, duration time.Duration, resultCount int) {
	c.searchQueriesTotal.WithLabelValues(adapter, status).Inc()
	c.searchDuration.WithLabelValues(adapter).Observe(duration.Seconds())
	c.searchResultsReturned.WithLabelValues(adapter).Observe(float64(resultCount))
}

// RecordAdapterHealth records the outcome of an adapter health check.
func (c *Collector) RecordAdapterHealth(adapter string, healthy bool) {
	v := 0.0
	if healthy {
		v = 1.0
	}
	c.adapterHealthy.WithLabelValues(adapter).Set(v)
}

// =============================================================================
// Verification metrics
// =============================================================================

// RecordVerifyAssessment records one criterion assessment outcome.
func (c *Collector) RecordVerifyAssessment(assessment string) {
	c.verifyAssessmentsTotal.WithLabelValues(assessment).Inc()
}

// RecordVerifyDocument records the wall time spent verifying one document
// against its full criteria set.
func (c *Collector) RecordVerifyDocument(duration time.Duration) {
	c.verifyDuration.Observe(duration.Seconds())
}

// RecordVerifyFallback records a document that fell back to heuristic
// validation instead of an LLM assessment, tagged with the reason.
func (c *Collector) RecordVerifyFallback(reason string) {
	c.verifyFallbacksTotal.WithLabelValues(reason).Inc()
}

// =============================================================================
// Classification metrics
// =============================================================================

// RecordClassification records one result's final classification.
func (c *Collector) RecordClassification(classification string) {
	c.classifyResultsTotal.WithLabelValues(classification).Inc()
}

// =============================================================================
// Helpers
// =============================================================================

// statusCode buckets an HTTP status code into its class (2xx/3xx/4xx/5xx).
func statusCode(code int) string {
	switch {
	case code >= 200 && code < 300:
		return "2xx"
	case code >= 300 && code < 400:
		return "3xx"
	case code >= 400 && code < 500:
		return "4xx"
	case code >= 500:
		return "5xx"
	default:
		return "unknown"
	}
}
