package api

import (
	"net/http"
	"strconv"

	"github.com/WebTargetLtd/wolves-cli-helper/pkg/logging"
	"github.com/WebTargetLtd/wolves-cli-helper/pkg/timers"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
)

// RequestMetrics counts and times API requests per route
type RequestMetrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
	bytes    *prometheus.CounterVec
}

// NewRequestMetrics creates request metrics and registers them with reg
func NewRequestMetrics(reg prometheus.Registerer) *RequestMetrics {
	m := &RequestMetrics{
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "wolves_http_requests_total",
				Help: "HTTP requests handled, by route and status",
			},
			[]string{"method", "route", "status"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "wolves_http_request_duration_milliseconds",
				Help:    "HTTP request latency in milliseconds",
				Buckets: prometheus.ExponentialBuckets(1, 4, 8),
			},
			[]string{"method", "route"},
		),
		bytes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "wolves_http_response_bytes_total",
				Help: "Bytes written in HTTP responses",
			},
			[]string{"method", "route"},
		),
	}
	reg.MustRegister(m.requests, m.duration, m.bytes)
	return m
}

// Middleware returns mux middleware recording every request
func (m *RequestMetrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		timer := timers.NewTimer()
		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(rw, r)
		timer.End()

		route := routeTemplate(r)
		m.requests.WithLabelValues(r.Method, route, strconv.Itoa(rw.statusCode)).Inc()
		m.duration.WithLabelValues(r.Method, route).Observe(float64(timer.Milliseconds()))
		m.bytes.WithLabelValues(r.Method, route).Add(float64(rw.bytesWritten))
	})
}

// LoggingMiddleware logs one line per request at DEBUG, and at WARN for
// server errors.
func LoggingMiddleware(logger *logging.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			timer := timers.NewTimer()
			rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

			next.ServeHTTP(rw, r)
			timer.End()

			fields := logging.Fields{
				"method":      r.Method,
				"path":        r.URL.Path,
				"status":      rw.statusCode,
				"duration_ms": timer.Milliseconds(),
			}
			if rw.statusCode >= http.StatusInternalServerError {
				logger.Warn("Request failed", fields)
				return
			}
			logger.Debug("Request", fields)
		})
	}
}

// routeTemplate keeps label cardinality bounded by timer names
func routeTemplate(r *http.Request) string {
	if route := mux.CurrentRoute(r); route != nil {
		if tpl, err := route.GetPathTemplate(); err == nil {
			return tpl
		}
	}
	return "unmatched"
}

type responseWriter struct {
	http.ResponseWriter
	bytesWritten int
	statusCode   int
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	n, err := rw.ResponseWriter.Write(b)
	rw.bytesWritten += n
	return n, err
}

func (rw *responseWriter) WriteHeader(statusCode int) {
	rw.statusCode = statusCode
	rw.ResponseWriter.WriteHeader(statusCode)
}
