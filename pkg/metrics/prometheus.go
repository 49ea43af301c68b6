// Package metrics provides Prometheus metrics for the pricing planner service.
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

// Outcome labels for FX fetches and country loads.
const (
	OutcomeOK          = "ok"
	OutcomeUnavailable = "unavailable"
	OutcomeStale       = "stale"
	OutcomeCacheHit    = "cache_hit"
	OutcomeFallback    = "fallback"
)

// latencyBuckets are milliseconds, tuned for public HTTP APIs.
var latencyBuckets = []float64{5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000, 10000} //nolint:gochecknoglobals // static buckets

// Manager manages all Prometheus metrics for the planner.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	refreshInterval  time.Duration
	customLabels     map[string]string
	metricPrefix     string
	registry         prometheus.Registerer

	// Pricing pipeline
	calculations    *prometheus.CounterVec
	rowsComputed    prometheus.Counter
	rowsUnavailable prometheus.Counter
	calcLatency     prometheus.Histogram

	// FX source
	fxFetches       *prometheus.CounterVec
	fxFetchLatency  prometheus.Histogram
	fxLastSuccess   prometheus.Gauge
	fxRatesReturned prometheus.Gauge

	// Country dataset
	countryLoads     *prometheus.CounterVec
	countryLoadRetry prometheus.Counter
	countriesCached  prometheus.Gauge

	// HTTP Performance Metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	outboundRequests    *prometheus.CounterVec

	// Error tracking
	errorRateByComponent *prometheus.CounterVec

	// System Performance Metrics
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Histogram
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

// Initialize global metrics.
func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// Init replaces the global manager with one built from opts on a fresh
// registry. Call it once at startup, before handlers read GetRegistry.
func Init(opts ...Option) *Manager {
	customRegistry = prometheus.NewRegistry()
	globalManager = NewManager(append([]Option{WithPrometheusRegistry(customRegistry)}, opts...)...)
	return globalManager
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "planner",
		subsystem:        "pricing",
		histogramBuckets: latencyBuckets,
		enabled:          true,
		refreshInterval:  defaultRefreshInterval,
		customLabels:     make(map[string]string),
		metricPrefix:     "",
		registry:         prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

// RefreshInterval is how often gauge updaters should run.
func (m *Manager) RefreshInterval() time.Duration { return m.refreshInterval }

// Enabled reports whether recording is on.
func (m *Manager) Enabled() bool { return m.enabled }

func (m *Manager) name(n string) string {
	if m.metricPrefix == "" {
		return n
	}
	return m.metricPrefix + "_" + n
}

func (m *Manager) counterOpts(name, help string) prometheus.CounterOpts {
	return prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name(name),
		Help:        help,
		ConstLabels: m.customLabels,
	}
}

func (m *Manager) gaugeOpts(name, help string) prometheus.GaugeOpts {
	return prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name(name),
		Help:        help,
		ConstLabels: m.customLabels,
	}
}

func (m *Manager) histogramOpts(name, help string) prometheus.HistogramOpts {
	return prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name(name),
		Help:        help,
		Buckets:     m.histogramBuckets,
		ConstLabels: m.customLabels,
	}
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() { //nolint:funlen // long function required for comprehensive metrics initialization
	auto := promauto.With(m.registry)

	m.calculations = auto.NewCounterVec(
		m.counterOpts("calculations_total", "Regional price calculations by base price reason"),
		[]string{"reason"},
	)
	m.rowsComputed = auto.NewCounter(m.counterOpts("rows_total", "Regional price rows computed"))
	m.rowsUnavailable = auto.NewCounter(m.counterOpts("rows_unavailable_total", "Rows returned without prices because no FX rate was available"))
	m.calcLatency = auto.NewHistogram(m.histogramOpts("calculation_latency_milliseconds", "End to end calculation latency in milliseconds"))

	m.fxFetches = auto.NewCounterVec(
		m.counterOpts("fx_fetches_total", "FX fetches by outcome (ok, unavailable, stale)"),
		[]string{"outcome"},
	)
	m.fxFetchLatency = auto.NewHistogram(m.histogramOpts("fx_fetch_latency_milliseconds", "FX source latency in milliseconds"))
	m.fxLastSuccess = auto.NewGauge(m.gaugeOpts("fx_last_success_unix", "Unix time of the last committed FX snapshot"))
	m.fxRatesReturned = auto.NewGauge(m.gaugeOpts("fx_rates", "Number of rates in the current FX snapshot"))

	m.countryLoads = auto.NewCounterVec(
		m.counterOpts("country_loads_total", "Country dataset loads by outcome"),
		[]string{"outcome"},
	)
	m.countryLoadRetry = auto.NewCounter(m.counterOpts("country_load_retries_total", "Retries while loading the country dataset"))
	m.countriesCached = auto.NewGauge(m.gaugeOpts("countries_cached", "Countries in the cached dataset"))

	m.httpRequests = auto.NewCounterVec(
		m.counterOpts("http_requests_total", "Total number of HTTP requests by endpoint and method"),
		[]string{"endpoint", "method", "status_code"},
	)
	m.httpRequestDuration = auto.NewHistogramVec(
		m.histogramOpts("http_request_duration_milliseconds", "HTTP request duration in milliseconds"),
		[]string{"endpoint", "method", "status_code"},
	)
	m.outboundRequests = auto.NewCounterVec(
		m.counterOpts("outbound_requests_total", "Outbound HTTP requests by host and status code"),
		[]string{"host", "status_code"},
	)

	m.errorRateByComponent = auto.NewCounterVec(
		m.counterOpts("errors_by_component_total", "Errors by component and type"),
		[]string{"component", "error_type"},
	)

	m.systemMemoryUsage = auto.NewGauge(m.gaugeOpts("system_memory_bytes", "Heap memory in use in bytes"))
	m.systemGoroutineCount = auto.NewGauge(m.gaugeOpts("system_goroutines", "Number of goroutines"))
	m.systemGCPauseTime = auto.NewHistogram(m.histogramOpts("system_gc_pause_milliseconds", "GC pause time in milliseconds"))
}

// RecordCalculation records one calculation with its row counts and latency.
func RecordCalculation(reason string, rows, unavailable int, latencyMs float64) {
	if !globalManager.enabled {
		return
	}
	globalManager.calculations.WithLabelValues(reason).Inc()
	globalManager.rowsComputed.Add(float64(rows))
	globalManager.rowsUnavailable.Add(float64(unavailable))
	globalManager.calcLatency.Observe(latencyMs)
}

// RecordFxFetch records an FX fetch outcome and its latency.
func RecordFxFetch(outcome string, latencyMs float64) {
	if !globalManager.enabled {
		return
	}
	globalManager.fxFetches.WithLabelValues(outcome).Inc()
	globalManager.fxFetchLatency.Observe(latencyMs)
}

// UpdateFxSnapshot sets the FX snapshot gauges.
func UpdateFxSnapshot(fetchedAt time.Time, rates int) {
	if !globalManager.enabled {
		return
	}
	globalManager.fxLastSuccess.Set(float64(fetchedAt.Unix()))
	globalManager.fxRatesReturned.Set(float64(rates))
}

// RecordCountryLoad records a country dataset load outcome.
func RecordCountryLoad(outcome string) {
	if !globalManager.enabled {
		return
	}
	globalManager.countryLoads.WithLabelValues(outcome).Inc()
}

// RecordCountryLoadRetry increments the dataset retry counter.
func RecordCountryLoadRetry() {
	if !globalManager.enabled {
		return
	}
	globalManager.countryLoadRetry.Inc()
}

// UpdateCountriesCached sets the cached dataset size.
func UpdateCountriesCached(count int) {
	if !globalManager.enabled {
		return
	}
	globalManager.countriesCached.Set(float64(count))
}

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	if !globalManager.enabled {
		return
	}
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	if !globalManager.enabled {
		return
	}
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// RecordOutboundRequest records an outbound call made through pkg/httpx.
func RecordOutboundRequest(host, statusCode string) {
	if !globalManager.enabled {
		return
	}
	globalManager.outboundRequests.WithLabelValues(host, statusCode).Inc()
}

// RecordErrorByComponent records an error with component and type labels.
func RecordErrorByComponent(component, errorType string) {
	if !globalManager.enabled {
		return
	}
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

// Global returns the process-wide manager.
func Global() *Manager {
	return globalManager
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
