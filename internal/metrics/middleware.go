package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
)

// routeUnmatched labels requests no chi route claimed (404/405 probes).
const routeUnmatched = "unmatched"

// HTTP transport Prometheus metrics.
var (
	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "docdex",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds by route",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "docdex",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests by route and status",
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestsInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "docdex",
			Subsystem: "http",
			Name:      "requests_in_flight",
			Help:      "HTTP requests currently being served",
		},
	)

	// Upload bodies dominate; search and chat requests are tiny.
	HTTPRequestBytes = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "docdex",
			Subsystem: "http",
			Name:      "request_size_bytes",
			Help:      "Declared HTTP request body size by route",
			Buckets:   prometheus.ExponentialBuckets(256, 4, 10), // 256B .. 64MiB
		},
		[]string{"method", "route"},
	)

	HTTPResponseBytes = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "docdex",
			Subsystem: "http",
			Name:      "response_size_bytes",
			Help:      "HTTP response body size by route",
			Buckets:   prometheus.ExponentialBuckets(64, 4, 8),
		},
		[]string{"method", "route"},
	)
)

var httpMetricsRegistered bool

// RegisterHTTPMetrics registers transport metrics. Must be called once from main.
func RegisterHTTPMetrics() {
	if httpMetricsRegistered {
		return
	}
	prometheus.MustRegister(HTTPRequestDuration)
	prometheus.MustRegister(HTTPRequestsTotal)
	prometheus.MustRegister(HTTPRequestsInFlight)
	prometheus.MustRegister(HTTPRequestBytes)
	prometheus.MustRegister(HTTPResponseBytes)
	httpMetricsRegistered = true
}

// Middleware records per-route latency, status, and body sizes.
// Routes are labeled by chi pattern so /api/documents/{id} stays one series.
func Middleware() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			HTTPRequestsInFlight.Inc()
			defer HTTPRequestsInFlight.Dec()

			start := time.Now()
			rec := &responseRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r)

			route := routeLabel(r)
			status := strconv.Itoa(rec.status)

			HTTPRequestDuration.WithLabelValues(r.Method, route, status).Observe(time.Since(start).Seconds())
			HTTPRequestsTotal.WithLabelValues(r.Method, route, status).Inc()
			if r.ContentLength > 0 {
				HTTPRequestBytes.WithLabelValues(r.Method, route).Observe(float64(r.ContentLength))
			}
			HTTPResponseBytes.WithLabelValues(r.Method, route).Observe(float64(rec.bytes))
		})
	}
}

func routeLabel(r *http.Request) string {
	rctx := chi.RouteContext(r.Context())
	if rctx == nil {
		return routeUnmatched
	}
	if p := rctx.RoutePattern(); p != "" {
		return p
	}
	return routeUnmatched
}

type responseRecorder struct {
	http.ResponseWriter
	status      int
	bytes       int
	wroteHeader bool
}

func (w *responseRecorder) WriteHeader(status int) {
	if !w.wroteHeader {
		w.status = status
		w.wroteHeader = true
	}
	w.ResponseWriter.WriteHeader(status)
}

func (w *responseRecorder) Write(b []byte) (int, error) {
	w.wroteHeader = true
	n, err := w.ResponseWriter.Write(b)
	w.bytes += n
	return n, err //nolint:wrapcheck // pass-through
}
