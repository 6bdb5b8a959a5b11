package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// HTTP metrics
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
	HTTPRequestSize     *prometheus.HistogramVec
	HTTPResponseSize    *prometheus.HistogramVec

	// Permission source metrics
	SourceRequestsTotal   *prometheus.CounterVec
	SourceRequestDuration *prometheus.HistogramVec

	// Principal cache metrics
	CacheHitsTotal   *prometheus.CounterVec
	CacheMissesTotal *prometheus.CounterVec

	// Menu resolution metrics
	MenuResolutionsTotal   *prometheus.CounterVec
	MenuResolutionDuration *prometheus.HistogramVec

	// Tab metrics
	TabOperationsTotal *prometheus.CounterVec
	TabStoreErrors     *prometheus.CounterVec

	// Business metrics
	SessionsActive   prometheus.Gauge
	PrincipalsCached prometheus.Gauge
}

// NewMetrics creates and registers all Prometheus metrics
func NewMetrics(registry *prometheus.Registry) *Metrics {
	m := &Metrics{
		// HTTP metrics
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "console_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "console_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
		HTTPRequestSize: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "console_http_request_size_bytes",
				Help:    "HTTP request size in bytes",
				Buckets: prometheus.ExponentialBuckets(100, 10, 8),
			},
			[]string{"method", "path"},
		),
		HTTPResponseSize: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "console_http_response_size_bytes",
				Help:    "HTTP response size in bytes",
				Buckets: prometheus.ExponentialBuckets(100, 10, 8),
			},
			[]string{"method", "path"},
		),

		// Permission source metrics
		SourceRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "console_permission_source_requests_total",
				Help: "Total number of permission source calls",
			},
			[]string{"operation", "status"},
		),
		SourceRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "console_permission_source_request_duration_seconds",
				Help:    "Permission source call duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),

		// Principal cache metrics
		CacheHitsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "console_cache_hits_total",
				Help: "Total number of cache hits",
			},
			[]string{"cache_type"},
		),
		CacheMissesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "console_cache_misses_total",
				Help: "Total number of cache misses",
			},
			[]string{"cache_type"},
		),

		// Menu resolution metrics
		MenuResolutionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "console_menu_resolutions_total",
				Help: "Total number of menu tree resolutions",
			},
			[]string{"module"},
		),
		MenuResolutionDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "console_menu_resolution_duration_seconds",
				Help:    "Menu tree resolution duration in seconds",
				Buckets: []float64{.0001, .0005, .001, .005, .01, .05, .1},
			},
			[]string{"module"},
		),

		// Tab metrics
		TabOperationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "console_tab_operations_total",
				Help: "Total number of tab bar operations",
			},
			[]string{"operation"},
		),
		TabStoreErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "console_tab_store_errors_total",
				Help: "Total number of tab snapshot store errors",
			},
			[]string{"operation"},
		),

		// Business metrics
		SessionsActive: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "console_sessions_active",
				Help: "Number of active console sessions",
			},
		),
		PrincipalsCached: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "console_principals_cached",
				Help: "Number of cached principal snapshots",
			},
		),
	}

	// Register all metrics
	registry.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.HTTPRequestSize,
		m.HTTPResponseSize,
		m.SourceRequestsTotal,
		m.SourceRequestDuration,
		m.CacheHitsTotal,
		m.CacheMissesTotal,
		m.MenuResolutionsTotal,
		m.MenuResolutionDuration,
		m.TabOperationsTotal,
		m.TabStoreErrors,
		m.SessionsActive,
		m.PrincipalsCached,
	)

	return m
}

// responseWriter wraps http.ResponseWriter to capture status code and size
type responseWriter struct {
	http.ResponseWriter
	statusCode   int
	bytesWritten int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	n, err := rw.ResponseWriter.Write(b)
	rw.bytesWritten += n
	return n, err
}

// HTTPMetricsMiddleware instruments HTTP requests with Prometheus metrics
func HTTPMetricsMiddleware(metrics *Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			// Wrap response writer to capture status and size
			rw := &responseWriter{
				ResponseWriter: w,
				statusCode:     http.StatusOK,
			}

			// Record request size
			if r.ContentLength > 0 {
				metrics.HTTPRequestSize.WithLabelValues(r.Method, r.URL.Path).Observe(float64(r.ContentLength))
			}

			// Serve the request
			next.ServeHTTP(rw, r)

			// Record metrics
			duration := time.Since(start).Seconds()
			status := strconv.Itoa(rw.statusCode)

			metrics.HTTPRequestsTotal.WithLabelValues(r.Method, r.URL.Path, status).Inc()
			metrics.HTTPRequestDuration.WithLabelValues(r.Method, r.URL.Path).Observe(duration)
			metrics.HTTPResponseSize.WithLabelValues(r.Method, r.URL.Path).Observe(float64(rw.bytesWritten))
		})
	}
}

// RegisterMetricsEndpoint registers the /metrics endpoint
func RegisterMetricsEndpoint(mux *http.ServeMux, registry *prometheus.Registry) {
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
}
