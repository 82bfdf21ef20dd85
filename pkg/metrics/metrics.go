// Package metrics provides Prometheus instrumentation for the storefront
// client and its mock backend.
//
// The client records every call automatically. Expose the registry from any
// process that embeds the client:
//
//	http.Handle("/metrics", metrics.Handler())
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// ─────────────────────────────────────────────
// Client metrics
// ─────────────────────────────────────────────

var (
	// CallDuration tracks how long each API call takes, by operation name,
	// HTTP method and HTTP status ("none" when no response arrived).
	CallDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "storefront",
			Subsystem: "client",
			Name:      "call_duration_seconds",
			Help:      "Duration of storefront API calls in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"operation", "method", "status"},
	)

	// CallFailures counts failed API calls by operation and failure kind.
	CallFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "storefront",
			Subsystem: "client",
			Name:      "call_failures_total",
			Help:      "Total failed storefront API calls.",
		},
		[]string{"operation", "kind"}, // "validation" | "transport" | "server_status" | "request"
	)

	// Notifications counts toasts emitted to sinks.
	Notifications = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "storefront",
			Subsystem: "notification",
			Name:      "emitted_total",
			Help:      "Total notifications emitted.",
		},
		[]string{"level"}, // "success" | "failure"
	)

	// NotificationsDropped counts toasts an async sink could not queue.
	NotificationsDropped = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "storefront",
		Subsystem: "notification",
		Name:      "dropped_total",
		Help:      "Notifications dropped because the delivery queue was full.",
	})
)

// ─────────────────────────────────────────────
// Mock backend metrics
// ─────────────────────────────────────────────

var (
	// RequestDuration tracks how long each mock backend request takes.
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "storefront",
			Subsystem: "mock",
			Name:      "request_duration_seconds",
			Help:      "Duration of mock backend requests in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	// Panics counts mock backend handler panics turned into 500s.
	Panics = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "storefront",
			Subsystem: "mock",
			Name:      "panics_total",
			Help:      "Mock backend handler panics recovered.",
		},
		[]string{"method", "path"},
	)

	// RequestInFlight tracks how many requests the mock backend is serving.
	RequestInFlight = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "storefront",
		Subsystem: "mock",
		Name:      "requests_in_flight",
		Help:      "Number of mock backend requests currently being served.",
	})
)

// DefaultRegistry is the Prometheus registry every storefront metric lives on.
var DefaultRegistry = prometheus.NewRegistry()

func init() {
	DefaultRegistry.MustRegister(collectors.NewGoCollector())
	DefaultRegistry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	DefaultRegistry.MustRegister(
		CallDuration,
		CallFailures,
		Notifications,
		NotificationsDropped,
		RequestDuration,
		RequestInFlight,
		Panics,
	)
}

// ObserveCall records one finished API call. status is the HTTP status, or
// 0 when no response arrived.
func ObserveCall(operation, method string, status int, start time.Time) {
	s := "none"
	if status > 0 {
		s = strconv.Itoa(status)
	}
	CallDuration.WithLabelValues(operation, method, s).Observe(time.Since(start).Seconds())
}

// RecordFailure counts one failed API call.
func RecordFailure(operation, kind string) {
	CallFailures.WithLabelValues(operation, kind).Inc()
}

// RecordPanic counts one recovered handler panic.
func RecordPanic(method, path string) {
	Panics.WithLabelValues(method, path).Inc()
}

// RecordNotification counts one emitted toast.
func RecordNotification(level string) {
	Notifications.WithLabelValues(level).Inc()
}

// ─────────────────────────────────────────────
// HTTP middleware for the mock backend
// ─────────────────────────────────────────────

type responseRecorder struct {
	http.ResponseWriter
	status int
}

func (r *responseRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// Middleware records duration and in-flight count for every request.
func Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			RequestInFlight.Inc()
			defer RequestInFlight.Dec()

			rr := &responseRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rr, r)

			RequestDuration.WithLabelValues(r.Method, r.URL.Path, strconv.Itoa(rr.status)).
				Observe(time.Since(start).Seconds())
		})
	}
}

// Handler exposes DefaultRegistry in the Prometheus text format.
func Handler() http.HandlerFunc {
	h := promhttp.HandlerFor(DefaultRegistry, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
	})
	return h.ServeHTTP
}
