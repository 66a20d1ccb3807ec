// Package metrics provides Prometheus metrics for the enso challenge service.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Default metrics configuration constants.
const (
	defaultRefreshInterval = 10 * time.Second
)

// Manager manages all Prometheus metrics for the enso service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	refreshInterval  time.Duration
	registry         prometheus.Registerer

	// Submission Pipeline Metrics - What really matters for a daily challenge
	submissions     *prometheus.CounterVec
	scoringDuration prometheus.Histogram
	scores          prometheus.Histogram

	// Queue Metrics - Intake backpressure
	queueDepth      prometheus.Gauge
	queueCapacity   prometheus.Gauge
	queueRejections *prometheus.CounterVec

	// Worker Metrics - Scoring capacity
	workerCount   prometheus.Gauge
	inflightPairs prometheus.Gauge

	// Ledger Metrics - Durable state
	ledgerSubmissions prometheus.Gauge
	ledgerDaySize     prometheus.Gauge

	// Announcer Metrics
	announcements *prometheus.CounterVec

	// HTTP Performance Metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	httpRateLimited     prometheus.Counter
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

// Initialize global metrics.
func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "enso",
		subsystem:        "challenge",
		histogramBuckets: prometheus.DefBuckets,
		refreshInterval:  defaultRefreshInterval,
		registry:         prometheus.DefaultRegisterer,
	}

	// Apply all options
	for _, opt := range opts {
		opt(m)
	}

	// Initialize metrics
	m.initializeMetrics()

	return m
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() {
	// Ensure metrics are registered on the configured registry (custom by default)
	auto := promauto.With(m.registry)

	// Submission Pipeline Metrics
	m.submissions = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "submissions_total",
			Help:      "Total number of submissions by outcome (accepted, duplicate, rejected_decode, rejected_no_shape, store_failed, failed)",
		},
		[]string{"outcome"},
	)

	m.scoringDuration = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "scoring_duration_seconds",
		Help:      "Histogram of image scoring duration in seconds (decode + contour trace + enclosing circle)",
		Buckets:   m.histogramBuckets,
	})

	m.scores = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "score_distribution",
		Help:      "Distribution of accepted circularity scores on the 0..100 scale",
		Buckets:   []float64{10, 20, 30, 40, 50, 60, 70, 80, 85, 90, 95, 99, 100},
	})

	// Queue Metrics
	m.queueDepth = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "queue_depth",
		Help:      "Current number of submissions waiting for a scoring worker",
	})

	m.queueCapacity = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "queue_capacity",
		Help:      "Maximum submission queue capacity",
	})

	m.queueRejections = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "queue_rejections_total",
			Help:      "Total number of enqueue rejections by reason (full, closed, cancelled)",
		},
		[]string{"reason"},
	)

	// Worker Metrics
	m.workerCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "worker_count",
		Help:      "Number of scoring workers (caps concurrent image decodes)",
	})

	m.inflightPairs = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "inflight_pairs",
		Help:      "Number of (user, day) pairs with a scoring run currently in flight",
	})

	// Ledger Metrics
	m.ledgerSubmissions = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "ledger_submissions",
		Help:      "Total number of recorded submissions across all days",
	})

	m.ledgerDaySize = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "ledger_day_submissions",
		Help:      "Number of recorded submissions for the current challenge day",
	})

	// Announcer Metrics
	m.announcements = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "announcements_total",
			Help:      "Total number of challenge announcements by status (sent, failed, skipped)",
		},
		[]string{"status"},
	)

	// HTTP Performance Metrics
	m.httpRequests = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests by endpoint and method",
		},
		[]string{"endpoint", "method", "status_code"},
	)

	m.httpRequestDuration = auto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "http_request_duration_milliseconds",
			Help:      "HTTP request duration in milliseconds",
			Buckets:   m.histogramBuckets,
		},
		[]string{"endpoint", "method", "status_code"},
	)

	m.httpRateLimited = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "http_rate_limited_total",
		Help:      "Total number of requests rejected by the submission rate limiter",
	})
}

// RecordSubmission counts one resolved submission by outcome label.
func RecordSubmission(outcome string) {
	globalManager.submissions.WithLabelValues(outcome).Inc()
}

// RecordScoringDuration records one scoring run's duration in seconds.
func RecordScoringDuration(seconds float64) {
	globalManager.scoringDuration.Observe(seconds)
}

// ObserveScore records an accepted circularity score.
func ObserveScore(score float64) {
	globalManager.scores.Observe(score)
}

// UpdateQueueDepth sets the current queue depth and capacity.
func UpdateQueueDepth(depth, capacity int) {
	globalManager.queueDepth.Set(float64(depth))
	globalManager.queueCapacity.Set(float64(capacity))
}

// RecordQueueRejection counts one rejected enqueue by reason.
func RecordQueueRejection(reason string) {
	globalManager.queueRejections.WithLabelValues(reason).Inc()
}

// UpdateWorkerCount sets the current worker count.
func UpdateWorkerCount(count int) {
	globalManager.workerCount.Set(float64(count))
}

// UpdateInflightPairs sets the number of active (user, day) pairs.
func UpdateInflightPairs(count int64) {
	globalManager.inflightPairs.Set(float64(count))
}

// UpdateLedgerSize sets the total and current-day submission counts.
func UpdateLedgerSize(total, today int64) {
	globalManager.ledgerSubmissions.Set(float64(total))
	globalManager.ledgerDaySize.Set(float64(today))
}

// RecordAnnouncement counts one challenge announcement by status.
func RecordAnnouncement(status string) {
	globalManager.announcements.WithLabelValues(status).Inc()
}

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, durationMs float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(durationMs)
}

// RecordRateLimited counts one request rejected by the rate limiter.
func RecordRateLimited() {
	globalManager.httpRateLimited.Inc()
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
