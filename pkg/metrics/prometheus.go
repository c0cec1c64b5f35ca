// Package metrics provides Prometheus metrics for the onthisday service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Fetch outcome label values.
const (
	OutcomeSuccess  = "success"
	OutcomeFallback = "fallback"
)

// Manager manages all Prometheus metrics for the onthisday service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	registry         prometheus.Registerer

	// History fetch metrics
	fetches           *prometheus.CounterVec
	fallbacks         *prometheus.CounterVec
	eventsFetched     prometheus.Histogram
	completionLatency prometheus.Histogram
	completionErrors  prometheus.Counter

	// Selection metrics
	selections     *prometheus.CounterVec
	selectionScore prometheus.Histogram

	// Queue and worker metrics
	queueSize         prometheus.Gauge
	queueCapacity     prometheus.Gauge
	queueEnqueued     prometheus.Counter
	queueRejected     *prometheus.CounterVec
	workerCount       prometheus.Gauge
	workerJobLatency  prometheus.Histogram
	workerJobFailures prometheus.Counter

	// Daily scheduler
	dailyRuns *prometheus.CounterVec

	// HTTP Performance Metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	httpErrors          *prometheus.CounterVec

	// System Performance Metrics
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Histogram
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "onthisday",
		subsystem:        "history",
		histogramBuckets: []float64{5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000, 10000, 30000},
		registry:         prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

func (m *Manager) initializeMetrics() { //nolint:funlen // one place for every collector
	auto := promauto.With(m.registry)

	m.fetches = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "fetches_total",
		Help:      "History fetches by outcome (success or fallback)",
	}, []string{"outcome"})

	m.fallbacks = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "fallbacks_total",
		Help:      "Fallback results served, by reason",
	}, []string{"reason"})

	m.eventsFetched = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "events_per_fetch",
		Help:      "Number of candidate events parsed from a completion",
		Buckets:   []float64{0, 5, 10, 15, 20, 25, 30, 50},
	})

	m.completionLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "completion_latency_milliseconds",
		Help:      "Latency of text-generation calls in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	m.completionErrors = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "completion_errors_total",
		Help:      "Failed text-generation calls",
	})

	m.selections = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "selections_total",
		Help:      "Selections made, by mode (best or top_n)",
	}, []string{"mode"})

	m.selectionScore = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "selected_event_score",
		Help:      "Heuristic score of selected events",
		Buckets:   []float64{0, 3, 5, 8, 10, 15, 20, 30, 50},
	})

	m.queueSize = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "queue_size",
		Help:      "Current number of queued blocking jobs",
	})

	m.queueCapacity = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "queue_capacity",
		Help:      "Maximum number of queued blocking jobs",
	})

	m.queueEnqueued = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "queue_enqueued_total",
		Help:      "Jobs accepted by the queue",
	})

	m.queueRejected = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "queue_rejected_total",
		Help:      "Jobs rejected by the queue, by reason",
	}, []string{"reason"})

	m.workerCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "worker_count",
		Help:      "Number of workers running blocking jobs",
	})

	m.workerJobLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "worker_job_latency_milliseconds",
		Help:      "Time a worker spent running a job in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	m.workerJobFailures = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "worker_job_failures_total",
		Help:      "Jobs that returned an error",
	})

	m.dailyRuns = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "daily_runs_total",
		Help:      "Scheduled daily selections, by outcome",
	}, []string{"outcome"})

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

	m.httpErrors = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "http_errors_total",
			Help:      "HTTP error responses by endpoint, method and error type",
		},
		[]string{"endpoint", "method", "error_type"},
	)

	m.systemMemoryUsage = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "system_memory_usage_bytes",
		Help:      "System memory usage in bytes",
	})

	m.systemGoroutineCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "system_goroutine_count",
		Help:      "Number of goroutines",
	})

	m.systemGCPauseTime = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "system_gc_pause_time_milliseconds",
		Help:      "GC pause time in milliseconds",
		Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 25, 50, 100, 250, 500, 1000},
	})
}

// RecordFetch counts a history fetch with the given outcome.
func RecordFetch(outcome string) {
	globalManager.fetches.WithLabelValues(outcome).Inc()
}

// RecordFallback counts a fallback result served for reason.
func RecordFallback(reason string) {
	globalManager.fallbacks.WithLabelValues(reason).Inc()
}

// RecordEventsFetched observes how many candidates a completion produced.
func RecordEventsFetched(count int) {
	globalManager.eventsFetched.Observe(float64(count))
}

// RecordCompletionLatency records text-generation latency in milliseconds.
func RecordCompletionLatency(latencyMs float64) {
	globalManager.completionLatency.Observe(latencyMs)
}

// RecordCompletionError increments the failed completion counter.
func RecordCompletionError() {
	globalManager.completionErrors.Inc()
}

// RecordSelection counts a selection in the given mode.
func RecordSelection(mode string) {
	globalManager.selections.WithLabelValues(mode).Inc()
}

// RecordSelectionScore observes the score of a selected event.
func RecordSelectionScore(score int) {
	globalManager.selectionScore.Observe(float64(score))
}

// UpdateQueueSize sets the current queue size.
func UpdateQueueSize(size int) {
	globalManager.queueSize.Set(float64(size))
}

// UpdateQueueCapacity sets the queue capacity.
func UpdateQueueCapacity(capacity int) {
	globalManager.queueCapacity.Set(float64(capacity))
}

// RecordQueueEnqueue increments the accepted job counter.
func RecordQueueEnqueue() {
	globalManager.queueEnqueued.Inc()
}

// RecordQueueRejected counts a rejected job.
func RecordQueueRejected(reason string) {
	globalManager.queueRejected.WithLabelValues(reason).Inc()
}

// UpdateWorkerCount sets the current worker count.
func UpdateWorkerCount(count int) {
	globalManager.workerCount.Set(float64(count))
}

// RecordWorkerJobLatency records job run time in milliseconds.
func RecordWorkerJobLatency(latencyMs float64) {
	globalManager.workerJobLatency.Observe(latencyMs)
}

// RecordWorkerJobFailure increments the failed job counter.
func RecordWorkerJobFailure() {
	globalManager.workerJobFailures.Inc()
}

// RecordDailyRun counts a scheduled daily selection.
func RecordDailyRun(outcome string) {
	globalManager.dailyRuns.WithLabelValues(outcome).Inc()
}

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// RecordHTTPError counts an HTTP error response.
func RecordHTTPError(endpoint, method, errorType string) {
	globalManager.httpErrors.WithLabelValues(endpoint, method, errorType).Inc()
}

// UpdateSystemMemoryUsage sets the system memory usage.
func UpdateSystemMemoryUsage(bytes uint64) {
	globalManager.systemMemoryUsage.Set(float64(bytes))
}

// UpdateSystemGoroutineCount sets the goroutine count.
func UpdateSystemGoroutineCount(count int) {
	globalManager.systemGoroutineCount.Set(float64(count))
}

// RecordSystemGCPauseTime records GC pause time.
func RecordSystemGCPauseTime(pauseMs float64) {
	globalManager.systemGCPauseTime.Observe(pauseMs)
}

// GetRegistry returns the registry backing the global metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
