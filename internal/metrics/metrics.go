// Package metrics exposes Prometheus collectors for the news and generation pipelines.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcome label values.
const (
	StatusSuccess = "success"
	StatusError   = "error"
	StatusTimeout = "timeout"
)

var (
	// HTTP request metrics
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "company_pulse_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status_code"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "company_pulse_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	// Source connector metrics
	SourceFetchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "company_pulse_source_fetches_total",
			Help: "Total number of source connector searches",
		},
		[]string{"source", "status"},
	)

	SourceFetchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "company_pulse_source_fetch_duration_seconds",
			Help:    "Source connector search duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"source"},
	)

	SourceArticlesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "company_pulse_source_articles_total",
			Help: "Total number of raw articles returned by each source",
		},
		[]string{"source"},
	)

	// Processing metrics
	ArticlesProcessed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "company_pulse_articles_processed_total",
			Help: "Articles seen by the processor, by result",
		},
		[]string{"result"},
	)

	// Generation metrics
	ProviderAttemptsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "company_pulse_provider_attempts_total",
			Help: "Total number of generation provider attempts",
		},
		[]string{"provider", "operation", "status"},
	)

	ProviderAttemptDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "company_pulse_provider_attempt_duration_seconds",
			Help:    "Generation provider call duration in seconds",
			Buckets: []float64{0.5, 1, 2, 5, 10, 20, 40, 60},
		},
		[]string{"provider", "operation"},
	)

	QualityScore = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "company_pulse_quality_score",
			Help:    "Quality score of generated output",
			Buckets: prometheus.LinearBuckets(0, 10, 11),
		},
		[]string{"provider", "operation"},
	)

	FallbacksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "company_pulse_generation_fallbacks_total",
			Help: "Generation requests that needed more than one provider",
		},
		[]string{"operation"},
	)

	// Pipeline metrics
	PipelineRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "company_pulse_pipeline_runs_total",
			Help: "News pipeline runs",
		},
		[]string{"status", "cache"},
	)

	// Event metrics
	EventsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "company_pulse_events_published_total",
			Help: "Total number of NATS events published",
		},
		[]string{"subject", "status"},
	)

	ApplicationInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "company_pulse_application_info",
			Help: "Application information",
		},
		[]string{"version"},
	)
)

// Init records static application info.
func Init(version string) {
	ApplicationInfo.WithLabelValues(version).Set(1)
}

// ObserveSourceFetch records one connector search.
func ObserveSourceFetch(source, status string, articles int, d time.Duration) {
	SourceFetchesTotal.WithLabelValues(source, status).Inc()
	SourceFetchDuration.WithLabelValues(source).Observe(d.Seconds())
	if articles > 0 {
		SourceArticlesTotal.WithLabelValues(source).Add(float64(articles))
	}
}

// ObserveProviderAttempt records one generation provider call.
func ObserveProviderAttempt(provider, operation string, success bool, quality float64, d time.Duration) {
	status := StatusSuccess
	if !success {
		status = StatusError
	}
	ProviderAttemptsTotal.WithLabelValues(provider, operation, status).Inc()
	ProviderAttemptDuration.WithLabelValues(provider, operation).Observe(d.Seconds())
	if success {
		QualityScore.WithLabelValues(provider, operation).Observe(quality)
	}
}
