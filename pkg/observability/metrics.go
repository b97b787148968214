package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	paymentsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "checkout_payments_total",
			Help: "Total number of payment attempts by method and outcome",
		},
		[]string{"method", "status"},
	)

	paymentDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "checkout_payment_duration_seconds",
			Help:    "Duration of payment processing in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method"},
	)

	sessionsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "checkout_sessions_active",
			Help: "Number of checkout sessions currently open",
		},
	)

	authAttemptsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "authorization_attempts_total",
			Help: "Total number of secret verification attempts by channel and outcome",
		},
		[]string{"channel", "outcome"},
	)

	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"path", "method", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"path", "method"},
	)
)

// RecordPayment counts one payment attempt outcome
func RecordPayment(method, status string, duration time.Duration) {
	paymentsTotal.WithLabelValues(method, status).Inc()
	paymentDuration.WithLabelValues(method).Observe(duration.Seconds())
}

// SessionOpened increments the active session gauge
func SessionOpened() {
	sessionsActive.Inc()
}

// SessionClosed decrements the active session gauge
func SessionClosed() {
	sessionsActive.Dec()
}

// RecordAuthAttempt counts one secret verification outcome
func RecordAuthAttempt(channel, outcome string) {
	authAttemptsTotal.WithLabelValues(channel, outcome).Inc()
}

// statusRecorder captures the response status for metrics
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// HTTPMiddleware records Prometheus metrics for every HTTP request. The
// path label is the chi route pattern, not the raw URL, so session ids
// never leak into label values.
func HTTPMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		path := r.URL.Path
		if routeCtx := chi.RouteContext(r.Context()); routeCtx != nil {
			if pattern := routeCtx.RoutePattern(); pattern != "" {
				path = pattern
			}
		}
		duration := time.Since(start).Seconds()
		httpRequestDuration.WithLabelValues(path, r.Method).Observe(duration)
		httpRequestsTotal.WithLabelValues(path, r.Method, strconv.Itoa(rec.status)).Inc()
	})
}

// MetricsHandler returns the Prometheus scrape endpoint
func MetricsHandler() http.Handler {
	return promhttp.Handler()
}
