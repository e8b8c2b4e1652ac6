// Reelguard - LLM-Powered Parental Content Advisory Reports
// Copyright 2026 Reelguard Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reelguard/reelguard

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus instrumentation for the report pipeline:
// - External call latency (TMDB resolve, IMDb scrape, Gemini generation)
// - Generation retry and fallback behavior
// - Partial-object extractor health
// - Report store cache efficiency
// - API endpoint latency and throughput

var (
	// Resolution / scraping metrics
	ResolveDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "reelguard_resolve_duration_seconds",
			Help:    "Duration of TMDB title resolution in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	ScrapeDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "reelguard_scrape_duration_seconds",
			Help:    "Duration of IMDb parental guide scrapes in seconds",
			Buckets: []float64{0.25, 0.5, 1, 2.5, 5, 10, 20, 45},
		},
	)

	ScrapeRetries = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "reelguard_scrape_retries_total",
			Help: "Total number of scrape retries caused by anti-scraping responses",
		},
	)

	// Generation metrics
	GenerationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "reelguard_generation_duration_seconds",
			Help:    "Duration of generation service calls in seconds",
			Buckets: []float64{0.5, 1, 2.5, 5, 10, 30, 60, 120},
		},
		[]string{"mode"}, // "batch", "stream", "overall"
	)

	GenerationRetries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reelguard_generation_retries_total",
			Help: "Total number of generation call retries on transient errors",
		},
		[]string{"model"},
	)

	GenerationFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reelguard_generation_failures_total",
			Help: "Total number of generation calls that failed after all attempts",
		},
		[]string{"model"},
	)

	// Fallback controller metrics
	FallbackStageEntered = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reelguard_fallback_stage_entered_total",
			Help: "Times the fallback controller entered a recovery stage",
		},
		[]string{"stage"}, // "batch", "default"
	)

	DimensionsEmitted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reelguard_dimensions_emitted_total",
			Help: "Dimension results emitted, by producing stage",
		},
		[]string{"stage"}, // "stream", "sweep", "batch", "default"
	)

	// Partial-object extractor metrics. Malformed balanced spans are treated
	// as "not yet available" and can hide a genuinely broken upstream
	// payload until the stream ends, so they are counted here.
	ExtractorMalformedSpans = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "reelguard_extractor_malformed_spans_total",
			Help: "Balanced JSON spans that failed to parse during partial extraction",
		},
	)

	// Report store metrics
	CacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "reelguard_report_cache_hits_total",
			Help: "Total number of report store cache hits",
		},
	)

	CacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "reelguard_report_cache_misses_total",
			Help: "Total number of report store cache misses",
		},
	)

	IncompleteReportsSkipped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "reelguard_incomplete_reports_skipped_total",
			Help: "Reports that failed the completeness predicate and were not persisted",
		},
	)

	StoreErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reelguard_report_store_errors_total",
			Help: "Report store failures, swallowed and treated as miss/no-op",
		},
		[]string{"operation"}, // "get", "set"
	)

	// API endpoint metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reelguard_api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "reelguard_api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 15, 30, 60, 120},
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "reelguard_api_active_requests",
			Help: "Current number of active API requests",
		},
	)

	// Circuit breaker metrics
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "reelguard_circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)
)

// RecordGeneration records the duration of one generation pipeline
// stage ("batch", "stream", or "overall").
func RecordGeneration(mode string, duration time.Duration) {
	GenerationDuration.WithLabelValues(mode).Observe(duration.Seconds())
}

// RecordAPIRequest records one API request.
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest tracks active API requests.
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}
