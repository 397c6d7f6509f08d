package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager manages all Prometheus metrics for the scoring service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	customLabels     map[string]string
	registry         prometheus.Registerer

	// Scoring metrics
	commandsTotal      *prometheus.CounterVec
	commandLatency     *prometheus.HistogramVec
	ballsTotal         *prometheus.CounterVec
	ballsDuplicate     prometheus.Counter
	engineErrors       *prometheus.CounterVec
	matchesActive      prometheus.Gauge
	matchesFinished    *prometheus.CounterVec
	inningsTransitions *prometheus.CounterVec

	// Queue metrics
	queueSize          prometheus.Gauge
	queueCapacity      prometheus.Gauge
	queueUtilization   prometheus.Gauge
	queueEnqueueRate   prometheus.Counter
	queueDequeueRate   prometheus.Counter
	queueEnqueueErrors prometheus.Counter

	// Worker metrics
	workerCount             prometheus.Gauge
	workerProcessingLatency prometheus.Histogram
	workerErrors            prometheus.Counter

	// Store metrics
	storeLatency *prometheus.HistogramVec
	storeErrors  *prometheus.CounterVec

	// Live stream metrics
	liveSubscribers   prometheus.Gauge
	liveBroadcasts    prometheus.Counter
	liveDroppedFrames prometheus.Counter

	// HTTP metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	errorRateByComponent *prometheus.CounterVec

	// System metrics
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
		namespace:        "crease",
		subsystem:        "scoring",
		histogramBuckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 25, 50, 100, 250},
		customLabels:     make(map[string]string),
		registry:         prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) counterOpts(name, help string) prometheus.CounterOpts {
	return prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.customLabels,
	}
}

func (m *Manager) gaugeOpts(name, help string) prometheus.GaugeOpts {
	return prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.customLabels,
	}
}

func (m *Manager) histogramOpts(name, help string) prometheus.HistogramOpts {
	return prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		Buckets:     m.histogramBuckets,
		ConstLabels: m.customLabels,
	}
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() { //nolint:funlen // one place for the full metric set
	auto := promauto.With(m.registry)

	m.commandsTotal = auto.NewCounterVec(
		m.counterOpts("commands_total", "Match commands handled, by command and outcome"),
		[]string{"command", "outcome"})
	m.commandLatency = auto.NewHistogramVec(
		m.histogramOpts("command_latency_milliseconds", "Time from enqueue to applied command"),
		[]string{"command"})
	m.ballsTotal = auto.NewCounterVec(
		m.counterOpts("balls_total", "Balls applied, by event variant"),
		[]string{"event"})
	m.ballsDuplicate = auto.NewCounter(
		m.counterOpts("balls_duplicate_total", "Ball submissions dropped as retries of a known event id"))
	m.engineErrors = auto.NewCounterVec(
		m.counterOpts("engine_errors_total", "Commands rejected by the engine, by error kind"),
		[]string{"kind"})
	m.matchesActive = auto.NewGauge(
		m.gaugeOpts("matches_active", "Matches currently live"))
	m.matchesFinished = auto.NewCounterVec(
		m.counterOpts("matches_finished_total", "Matches that reached a final state"),
		[]string{"status"})
	m.inningsTransitions = auto.NewCounterVec(
		m.counterOpts("innings_closed_total", "Innings closed, by reason"),
		[]string{"reason"})

	m.queueSize = auto.NewGauge(m.gaugeOpts("queue_size", "Commands waiting across shard queues"))
	m.queueCapacity = auto.NewGauge(m.gaugeOpts("queue_capacity", "Total capacity of the shard queues"))
	m.queueUtilization = auto.NewGauge(m.gaugeOpts("queue_utilization_ratio", "Queue size over capacity"))
	m.queueEnqueueRate = auto.NewCounter(m.counterOpts("queue_enqueue_total", "Commands enqueued"))
	m.queueDequeueRate = auto.NewCounter(m.counterOpts("queue_dequeue_total", "Commands dequeued"))
	m.queueEnqueueErrors = auto.NewCounter(m.counterOpts("queue_enqueue_errors_total", "Commands refused by a full or stopped queue"))

	m.workerCount = auto.NewGauge(m.gaugeOpts("worker_count", "Shard workers running"))
	m.workerProcessingLatency = auto.NewHistogram(
		m.histogramOpts("worker_processing_latency_milliseconds", "Time a worker spends on one command"))
	m.workerErrors = auto.NewCounter(m.counterOpts("worker_errors_total", "Commands that failed in a worker"))

	m.storeLatency = auto.NewHistogramVec(
		m.histogramOpts("store_latency_milliseconds", "Match store operation latency"),
		[]string{"op"})
	m.storeErrors = auto.NewCounterVec(
		m.counterOpts("store_errors_total", "Match store operation failures"),
		[]string{"op"})

	m.liveSubscribers = auto.NewGauge(m.gaugeOpts("live_subscribers", "Connected live match subscribers"))
	m.liveBroadcasts = auto.NewCounter(m.counterOpts("live_broadcasts_total", "Snapshots fanned out to subscribers"))
	m.liveDroppedFrames = auto.NewCounter(m.counterOpts("live_dropped_frames_total", "Snapshots dropped for slow subscribers"))

	m.httpRequests = auto.NewCounterVec(
		m.counterOpts("http_requests_total", "Total number of HTTP requests by endpoint and method"),
		[]string{"endpoint", "method", "status_code"})
	m.httpRequestDuration = auto.NewHistogramVec(
		m.histogramOpts("http_request_duration_milliseconds", "HTTP request duration in milliseconds"),
		[]string{"endpoint", "method", "status_code"})

	m.errorRateByComponent = auto.NewCounterVec(
		m.counterOpts("errors_by_component_total", "Total number of errors by component"),
		[]string{"component", "error_type"})

	m.systemMemoryUsage = auto.NewGauge(m.gaugeOpts("system_memory_usage_bytes", "System memory usage in bytes"))
	m.systemGoroutineCount = auto.NewGauge(m.gaugeOpts("system_goroutine_count", "Number of goroutines"))
	gc := m.histogramOpts("system_gc_pause_time_milliseconds", "GC pause time in milliseconds")
	gc.Buckets = []float64{0.1, 0.5, 1, 2, 5, 10, 25, 50, 100, 250, 500, 1000}
	m.systemGCPauseTime = auto.NewHistogram(gc)
}

// RecordCommand counts a handled command and its latency in milliseconds.
func RecordCommand(command, outcome string, latencyMs float64) {
	globalManager.commandsTotal.WithLabelValues(command, outcome).Inc()
	globalManager.commandLatency.WithLabelValues(command).Observe(latencyMs)
}

// RecordBall counts an applied ball by event variant.
func RecordBall(event string) {
	globalManager.ballsTotal.WithLabelValues(event).Inc()
}

// RecordBallDuplicate counts a retried ball submission.
func RecordBallDuplicate() {
	globalManager.ballsDuplicate.Inc()
}

// RecordEngineError counts a rejected command by error kind.
func RecordEngineError(kind string) {
	globalManager.engineErrors.WithLabelValues(kind).Inc()
}

// UpdateMatchesActive sets the number of live matches.
func UpdateMatchesActive(count int) {
	globalManager.matchesActive.Set(float64(count))
}

// RecordMatchFinished counts a match reaching a final status.
func RecordMatchFinished(status string) {
	globalManager.matchesFinished.WithLabelValues(status).Inc()
}

// RecordInningsClosed counts a closed innings by reason.
func RecordInningsClosed(reason string) {
	globalManager.inningsTransitions.WithLabelValues(reason).Inc()
}

// Queue Metrics Functions.

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
	globalManager.queueEnqueueRate.Inc()
}

// RecordQueueDequeue increments the dequeue counter.
func RecordQueueDequeue() {
	globalManager.queueDequeueRate.Inc()
}

// RecordQueueEnqueueError increments the enqueue error counter.
func RecordQueueEnqueueError() {
	globalManager.queueEnqueueErrors.Inc()
}

// Worker Metrics Functions.

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

// RecordStoreLatency records a store operation latency in milliseconds.
func RecordStoreLatency(op string, latencyMs float64) {
	globalManager.storeLatency.WithLabelValues(op).Observe(latencyMs)
}

// RecordStoreError counts a failed store operation.
func RecordStoreError(op string) {
	globalManager.storeErrors.WithLabelValues(op).Inc()
}

// UpdateLiveSubscribers sets the number of connected live subscribers.
func UpdateLiveSubscribers(count int) {
	globalManager.liveSubscribers.Set(float64(count))
}

// RecordLiveBroadcast counts a snapshot fanned out to subscribers.
func RecordLiveBroadcast() {
	globalManager.liveBroadcasts.Inc()
}

// RecordLiveDroppedFrame counts a snapshot dropped for a slow subscriber.
func RecordLiveDroppedFrame() {
	globalManager.liveDroppedFrames.Inc()
}

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// RecordErrorByComponent records an error with component and type labels.
func RecordErrorByComponent(component, errorType string) {
	globalManager.errorRateByComponent.WithLabelValues(component, errorType).Inc()
}

// System Performance Metrics Functions.

// UpdateSystemMemoryUsage sets the system memory usage in bytes.
func UpdateSystemMemoryUsage(bytes uint64) {
	globalManager.systemMemoryUsage.Set(float64(bytes))
}

// UpdateSystemGoroutineCount sets the number of goroutines.
func UpdateSystemGoroutineCount(count int) {
	globalManager.systemGoroutineCount.Set(float64(count))
}

// RecordSystemGCPauseTime records GC pause time in milliseconds.
func RecordSystemGCPauseTime(pauseMs float64) {
	globalManager.systemGCPauseTime.Observe(pauseMs)
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
