// Package metrics provides Prometheus metrics for the SVES-DAQ backend.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager owns every collector exported by the backend.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	constLabels      prometheus.Labels
	registry         prometheus.Registerer

	// Prediction engine
	predictions         *prometheus.CounterVec
	predictionValue     *prometheus.HistogramVec
	unknownModels       prometheus.Counter
	riskAssessments     *prometheus.CounterVec
	recommendationsMade prometheus.Counter

	// Document store
	storeLatency *prometheus.HistogramVec
	storeErrors  *prometheus.CounterVec

	// Persistence pipeline
	queueSize      prometheus.Gauge
	queueCapacity  prometheus.Gauge
	queueEnqueued  prometheus.Counter
	queueRejected  prometheus.Counter
	workerCount    prometheus.Gauge
	workerJobs     prometheus.Counter
	workerFailures prometheus.Counter
	workerLatency  prometheus.Histogram
	duplicateKeys  prometheus.Counter
	notifications  *prometheus.CounterVec
	pluginRuns     *prometheus.CounterVec

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	httpErrors          *prometheus.CounterVec
	httpRejected        *prometheus.CounterVec

	// System
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
}

var globalManager *Manager //nolint:gochecknoglobals // singleton metrics manager

var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // keeps default Go collectors out

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a manager and registers its collectors.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "sves",
		subsystem:        "daq",
		histogramBuckets: []float64{0.5, 1, 2.5, 5, 10, 25, 50, 100, 250, 500, 1000, 2500},
		registry:         prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) counter(name, help string) prometheus.Counter {
	return promauto.With(m.registry).NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels,
	})
}

func (m *Manager) counterVec(name, help string, labels ...string) *prometheus.CounterVec {
	return promauto.With(m.registry).NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels,
	}, labels)
}

func (m *Manager) gauge(name, help string) prometheus.Gauge {
	return promauto.With(m.registry).NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels,
	})
}

func (m *Manager) histogram(name, help string, buckets []float64) prometheus.Histogram {
	return promauto.With(m.registry).NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels,
		Buckets: buckets,
	})
}

func (m *Manager) histogramVec(name, help string, buckets []float64, labels ...string) *prometheus.HistogramVec {
	return promauto.With(m.registry).NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels,
		Buckets: buckets,
	}, labels)
}

func (m *Manager) initializeMetrics() {
	m.predictions = m.counterVec("predictions_total", "Predictions served by model type", "model")
	m.predictionValue = m.histogramVec("prediction_value", "Distribution of predicted values",
		prometheus.LinearBuckets(0, 10, 11), "model")
	m.unknownModels = m.counter("prediction_unknown_models_total",
		"Prediction requests naming a model type outside the known set")
	m.riskAssessments = m.counterVec("risk_assessments_total", "Risk assessments by resulting level", "level")
	m.recommendationsMade = m.counter("recommendations_total", "Recommendations generated from performance gaps")

	m.storeLatency = m.histogramVec("store_operation_duration_milliseconds",
		"Document store operation latency in milliseconds", m.histogramBuckets, "op", "collection")
	m.storeErrors = m.counterVec("store_errors_total", "Document store operation failures", "op", "collection")

	m.queueSize = m.gauge("queue_size", "Prediction jobs waiting to be persisted")
	m.queueCapacity = m.gauge("queue_capacity", "Capacity of the prediction job queue")
	m.queueEnqueued = m.counter("queue_enqueued_total", "Prediction jobs accepted by the queue")
	m.queueRejected = m.counter("queue_rejected_total", "Prediction jobs rejected by the queue")
	m.workerCount = m.gauge("worker_count", "Persistence workers currently running")
	m.workerJobs = m.counter("worker_jobs_total", "Prediction jobs persisted by workers")
	m.workerFailures = m.counter("worker_failures_total", "Prediction jobs that failed to persist")
	m.workerLatency = m.histogram("worker_job_duration_milliseconds",
		"Time to persist one prediction job in milliseconds", m.histogramBuckets)
	m.duplicateKeys = m.counter("idempotency_duplicates_total", "Requests carrying an already seen idempotency key")
	m.notifications = m.counterVec("notifications_total", "Prediction notifications by outcome", "result")
	m.pluginRuns = m.counterVec("plugin_runs_total", "Analysis plugin executions", "plugin")

	m.httpRequests = m.counterVec("http_requests_total", "HTTP requests by endpoint and method",
		"endpoint", "method", "status_code")
	m.httpRequestDuration = m.histogramVec("http_request_duration_milliseconds",
		"HTTP request duration in milliseconds", m.histogramBuckets, "endpoint", "method", "status_code")
	m.httpErrors = m.counterVec("http_errors_total", "HTTP responses with an error status",
		"endpoint", "method", "error_type")
	m.httpRejected = m.counterVec("http_rejected_total", "Requests shed before reaching a handler", "reason")

	m.systemMemoryUsage = m.gauge("system_memory_usage_bytes", "Heap memory in use in bytes")
	m.systemGoroutineCount = m.gauge("system_goroutine_count", "Number of goroutines")
}

// RecordPrediction counts a served prediction and observes its value.
func RecordPrediction(model string, value float64) {
	globalManager.predictions.WithLabelValues(model).Inc()
	globalManager.predictionValue.WithLabelValues(model).Observe(value)
}

// RecordUnknownModel counts a request whose model type fell back to the default heuristic.
func RecordUnknownModel() {
	globalManager.unknownModels.Inc()
}

// RecordRiskAssessment counts a risk assessment by level.
func RecordRiskAssessment(level string) {
	globalManager.riskAssessments.WithLabelValues(level).Inc()
}

// RecordRecommendations adds n generated recommendations.
func RecordRecommendations(n int) {
	globalManager.recommendationsMade.Add(float64(n))
}

// RecordStoreOperation observes a store call. A non-nil err also counts a failure.
func RecordStoreOperation(op, collection string, latencyMs float64, err error) {
	globalManager.storeLatency.WithLabelValues(op, collection).Observe(latencyMs)
	if err != nil {
		globalManager.storeErrors.WithLabelValues(op, collection).Inc()
	}
}

func UpdateQueueSize(size int)         { globalManager.queueSize.Set(float64(size)) }
func UpdateQueueCapacity(capacity int) { globalManager.queueCapacity.Set(float64(capacity)) }
func RecordQueueEnqueue()              { globalManager.queueEnqueued.Inc() }
func RecordQueueRejected()             { globalManager.queueRejected.Inc() }
func UpdateWorkerCount(count int)      { globalManager.workerCount.Set(float64(count)) }
func RecordDuplicateKey()              { globalManager.duplicateKeys.Inc() }

// RecordWorkerJob observes a persisted job; failed jobs are counted separately.
func RecordWorkerJob(latencyMs float64, failed bool) {
	globalManager.workerLatency.Observe(latencyMs)
	if failed {
		globalManager.workerFailures.Inc()
		return
	}
	globalManager.workerJobs.Inc()
}

// RecordNotification counts a notification publish by outcome ("ok", "error").
func RecordNotification(result string) {
	globalManager.notifications.WithLabelValues(result).Inc()
}

// RecordPluginRun counts a plugin execution.
func RecordPluginRun(plugin string) {
	globalManager.pluginRuns.WithLabelValues(plugin).Inc()
}

// RecordHTTPRequest records an HTTP request and its duration.
func RecordHTTPRequest(endpoint, method, statusCode string, durationMs float64) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(durationMs)
}

// RecordHTTPError records an error response.
func RecordHTTPError(endpoint, method, errorType string) {
	globalManager.httpErrors.WithLabelValues(endpoint, method, errorType).Inc()
}

// RecordHTTPRejected records a request shed by a limiter ("rate_limited", "overloaded").
func RecordHTTPRejected(reason string) {
	globalManager.httpRejected.WithLabelValues(reason).Inc()
}

func UpdateSystemMemoryUsage(bytes uint64) { globalManager.systemMemoryUsage.Set(float64(bytes)) }
func UpdateSystemGoroutineCount(count int) { globalManager.systemGoroutineCount.Set(float64(count)) }

// GetRegistry returns the registry the global manager registers on.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
