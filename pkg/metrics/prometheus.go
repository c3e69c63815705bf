// Package metrics provides Prometheus metrics for the cvscreen service.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	defaultRefreshInterval = 10 * time.Second
)

// Manager manages all Prometheus metrics for the cvscreen service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	scoreBuckets     []float64
	refreshInterval  time.Duration
	registry         prometheus.Registerer

	// Screening
	analysesTotal      *prometheus.CounterVec
	analysisLatency    *prometheus.HistogramVec
	overallScore       prometheus.Histogram
	redFlags           *prometheus.CounterVec
	analysesDuplicate  prometheus.Counter
	shortlistEntries   prometheus.Gauge
	extractionFailures *prometheus.CounterVec

	// LLM
	llmCalls   *prometheus.CounterVec
	llmLatency prometheus.Histogram

	// Uploads and rate limiting
	uploads      *prometheus.CounterVec
	chatMessages *prometheus.CounterVec
	rateLimited  prometheus.Counter
	wsConnection prometheus.Gauge
	wsMessages   *prometheus.CounterVec

	// Queue
	queueSize        prometheus.Gauge
	queueCapacity    prometheus.Gauge
	queueUtilization prometheus.Gauge
	queueEnqueue     prometheus.Counter
	queueDequeue     prometheus.Counter
	queueRejected    prometheus.Counter

	// Worker
	workerCount             prometheus.Gauge
	workerProcessingLatency prometheus.Histogram
	workerErrors            prometheus.Counter

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	errorsByEndpoint    *prometheus.CounterVec

	// System
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
}

var globalManager *Manager //nolint:gochecknoglobals // singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // metrics registry

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "cvscreen",
		subsystem:        "screening",
		histogramBuckets: []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000, 10000, 30000},
		scoreBuckets:     []float64{10, 20, 30, 40, 50, 60, 70, 80, 90, 100},
		refreshInterval:  defaultRefreshInterval,
		registry:         prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()
	return m
}

// RefreshInterval is how often gauge updaters should poll.
func (m *Manager) RefreshInterval() time.Duration { return m.refreshInterval }

func (m *Manager) counter(name, help string) prometheus.Counter {
	return promauto.With(m.registry).NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help,
	})
}

func (m *Manager) counterVec(name, help string, labels ...string) *prometheus.CounterVec {
	return promauto.With(m.registry).NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help,
	}, labels)
}

func (m *Manager) gauge(name, help string) prometheus.Gauge {
	return promauto.With(m.registry).NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help,
	})
}

func (m *Manager) histogram(name, help string, buckets []float64) prometheus.Histogram {
	return promauto.With(m.registry).NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, Buckets: buckets,
	})
}

func (m *Manager) histogramVec(name, help string, labels ...string) *prometheus.HistogramVec {
	return promauto.With(m.registry).NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, Buckets: m.histogramBuckets,
	}, labels)
}

func (m *Manager) initializeMetrics() {
	m.analysesTotal = m.counterVec("analyses_total", "Completed CV analyses by mode and recommendation label", "mode", "label")
	m.analysisLatency = m.histogramVec("analysis_latency_milliseconds", "End-to-end analysis latency by mode", "mode")
	m.overallScore = m.histogram("overall_score", "Distribution of overall match scores", m.scoreBuckets)
	m.redFlags = m.counterVec("red_flags_total", "Red flags raised by rule", "rule")
	m.analysesDuplicate = m.counter("analyses_duplicate_total", "Submissions rejected as identical to one in flight")
	m.shortlistEntries = m.gauge("shortlist_entries", "Analyses currently held in the shortlist store")
	m.extractionFailures = m.counterVec("extraction_failures_total", "Text or candidate extraction failures by source", "source")

	m.llmCalls = m.counterVec("llm_calls_total", "LLM calls by outcome", "outcome")
	m.llmLatency = m.histogram("llm_latency_milliseconds", "LLM call latency", m.histogramBuckets)

	m.uploads = m.counterVec("uploads_total", "File uploads by type and outcome", "type", "outcome")
	m.chatMessages = m.counterVec("chat_messages_total", "Chat messages by type and reply source", "type", "source")
	m.rateLimited = m.counter("rate_limited_total", "Requests rejected by the rate limiter")
	m.wsConnection = m.gauge("websocket_connections", "Open WebSocket connections")
	m.wsMessages = m.counterVec("websocket_messages_total", "WebSocket messages by type and delivery", "type", "delivery")

	m.queueSize = m.gauge("queue_size", "Current size of the analysis queue")
	m.queueCapacity = m.gauge("queue_capacity", "Maximum capacity of the analysis queue")
	m.queueUtilization = m.gauge("queue_utilization_ratio", "Queue utilization ratio (0-1)")
	m.queueEnqueue = m.counter("queue_enqueue_total", "Jobs enqueued")
	m.queueDequeue = m.counter("queue_dequeue_total", "Jobs dequeued")
	m.queueRejected = m.counter("queue_rejected_total", "Jobs rejected because the queue was full or closed")

	m.workerCount = m.gauge("worker_count", "Number of analysis workers")
	m.workerProcessingLatency = m.histogram("worker_processing_latency_milliseconds", "Worker job processing latency", m.histogramBuckets)
	m.workerErrors = m.counter("worker_errors_total", "Worker job failures")

	m.httpRequests = m.counterVec("http_requests_total", "HTTP requests by endpoint, method and status", "endpoint", "method", "status_code")
	m.httpRequestDuration = m.histogramVec("http_request_duration_milliseconds", "HTTP request duration", "endpoint", "method", "status_code")
	m.errorsByEndpoint = m.counterVec("http_errors_total", "HTTP errors by endpoint, method and type", "endpoint", "method", "error_type")

	m.systemMemoryUsage = m.gauge("system_memory_usage_bytes", "Heap memory in use")
	m.systemGoroutineCount = m.gauge("system_goroutine_count", "Number of goroutines")
}

// RecordAnalysis records a completed analysis.
func RecordAnalysis(mode, label string, overall, latencyMs float64) {
	globalManager.analysesTotal.WithLabelValues(mode, label).Inc()
	globalManager.analysisLatency.WithLabelValues(mode).Observe(latencyMs)
	globalManager.overallScore.Observe(overall)
}

// RecordRedFlag increments the counter of a red-flag rule.
func RecordRedFlag(rule string) {
	globalManager.redFlags.WithLabelValues(rule).Inc()
}

// RecordAnalysisDuplicate increments the duplicate submission counter.
func RecordAnalysisDuplicate() {
	globalManager.analysesDuplicate.Inc()
}

// UpdateShortlistEntries sets the number of stored analyses.
func UpdateShortlistEntries(count int) {
	globalManager.shortlistEntries.Set(float64(count))
}

// RecordExtractionFailure increments extraction failures for a source (pdf, docx, llm, ...).
func RecordExtractionFailure(source string) {
	globalManager.extractionFailures.WithLabelValues(source).Inc()
}

// RecordLLMCall records an LLM call with its outcome (ok, error, invalid).
func RecordLLMCall(outcome string, latencyMs float64) {
	globalManager.llmCalls.WithLabelValues(outcome).Inc()
	globalManager.llmLatency.Observe(latencyMs)
}

// RecordUpload records a file upload.
func RecordUpload(fileType, outcome string) {
	globalManager.uploads.WithLabelValues(fileType, outcome).Inc()
}

// RecordChatMessage records a chat message and what answered it (command,
// analysis, llm, fallback).
func RecordChatMessage(msgType, source string) {
	globalManager.chatMessages.WithLabelValues(msgType, source).Inc()
}

// RecordRateLimited increments the rate-limited counter.
func RecordRateLimited() {
	globalManager.rateLimited.Inc()
}

// UpdateWebSocketConnections sets the number of open connections.
func UpdateWebSocketConnections(count int) {
	globalManager.wsConnection.Set(float64(count))
}

// RecordWebSocketMessage records an outgoing message; delivery is "sent",
// "queued", or "expired"/"evicted" for queued messages nobody collected.
func RecordWebSocketMessage(msgType, delivery string) {
	globalManager.wsMessages.WithLabelValues(msgType, delivery).Inc()
}

// UpdateQueueSize sets the current queue size.
func UpdateQueueSize(size int) {
	globalManager.queueSize.Set(float64(size))
}

// UpdateQueueCapacity sets the maximum queue capacity.
func UpdateQueueCapacity(capacity int) {
	globalManager.queueCapacity.Set(float64(capacity))
}

// UpdateQueueUtilization sets the queue utilization ratio.
func UpdateQueueUtilization(utilization float64) {
	globalManager.queueUtilization.Set(utilization)
}

// RecordQueueEnqueue increments the enqueue counter.
func RecordQueueEnqueue() {
	globalManager.queueEnqueue.Inc()
}

// RecordQueueDequeue increments the dequeue counter.
func RecordQueueDequeue() {
	globalManager.queueDequeue.Inc()
}

// RecordQueueRejected increments the rejected counter.
func RecordQueueRejected() {
	globalManager.queueRejected.Inc()
}

// UpdateWorkerCount sets the current worker count.
func UpdateWorkerCount(count int) {
	globalManager.workerCount.Set(float64(count))
}

// RecordWorkerProcessingLatency records worker processing latency.
func RecordWorkerProcessingLatency(latencyMs float64) {
	globalManager.workerProcessingLatency.Observe(latencyMs)
}

// RecordWorkerError increments the worker error counter.
func RecordWorkerError() {
	globalManager.workerErrors.Inc()
}

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// RecordErrorByEndpoint records an error with endpoint, method, and error type labels.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	globalManager.errorsByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
}

// UpdateSystemMemoryUsage sets the heap memory in use.
func UpdateSystemMemoryUsage(bytes uint64) {
	globalManager.systemMemoryUsage.Set(float64(bytes))
}

// UpdateSystemGoroutineCount sets the number of goroutines.
func UpdateSystemGoroutineCount(count int) {
	globalManager.systemGoroutineCount.Set(float64(count))
}

// RefreshInterval returns the refresh interval of the global manager.
func RefreshInterval() time.Duration {
	return globalManager.refreshInterval
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
