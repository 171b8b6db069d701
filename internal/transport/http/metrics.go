package httptransport

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	metricHTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pocketpoker_http_requests_total",
		Help: "Total number of HTTP requests.",
	}, []string{"method", "route", "status"})
	metricHTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "pocketpoker_http_request_duration_seconds",
		Help:    "HTTP request latency in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})
	metricHTTPInFlight = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "pocketpoker_http_requests_in_flight",
		Help: "Current number of HTTP requests being served.",
	})
	metricStreamsActive = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "pocketpoker_sse_streams_active",
		Help: "Open season event streams.",
	})
)

// MetricsMiddleware records request counts and latency by chi route pattern so
// season and game ids do not explode label cardinality.
func MetricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		metricHTTPInFlight.Inc()
		defer metricHTTPInFlight.Dec()

		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := r.URL.Path
		if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
			route = rc.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		metricHTTPRequestsTotal.WithLabelValues(r.Method, route, strconv.Itoa(status)).Inc()
		metricHTTPRequestDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}
