package server

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const metricsNamespace = "truthguard"

// Metrics holds the Prometheus collectors for the HTTP API
type Metrics struct {
	// RequestsTotal counts API requests.
	// Labels: route, status (HTTP status code)
	RequestsTotal *prometheus.CounterVec

	// AnalyzeDurationSeconds measures end-to-end analysis latency, dominated by the LLM call.
	// Labels: outcome (success, error)
	AnalyzeDurationSeconds *prometheus.HistogramVec

	// CredibilityScore tracks the distribution of returned scores
	CredibilityScore prometheus.Histogram

	// RateLimitedTotal counts requests rejected with 429
	RateLimitedTotal prometheus.Counter

	// HealthProbesTotal counts LLM availability probes actually sent (cache misses).
	// Labels: result (up, down)
	HealthProbesTotal *prometheus.CounterVec
}

// NewMetrics registers the API collectors on reg
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		RequestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total API requests by route and status",
		}, []string{"route", "status"}),

		AnalyzeDurationSeconds: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Subsystem: "analyze",
			Name:      "duration_seconds",
			Help:      "Analysis latency in seconds",
			Buckets:   []float64{0.25, 0.5, 1, 2, 5, 10, 20, 30, 60},
		}, []string{"outcome"}),

		CredibilityScore: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Subsystem: "analyze",
			Name:      "credibility_score",
			Help:      "Distribution of credibility scores",
			Buckets:   prometheus.LinearBuckets(10, 10, 10),
		}),

		RateLimitedTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "http",
			Name:      "rate_limited_total",
			Help:      "Total requests rejected by the rate limiter",
		}),

		HealthProbesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "health",
			Name:      "llm_probes_total",
			Help:      "LLM availability probes sent upstream",
		}, []string{"result"}),
	}
}
