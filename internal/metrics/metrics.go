// Package metrics exposes Prometheus instrumentation for the API.
//
// Wire it up once in the server:
//
//	r.Use(metrics.Middleware())
//	r.Get("/metrics", metrics.Handler())
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "crm"

// Mutation outcomes.
const (
	OutcomeCreated  = "created"
	OutcomeRejected = "rejected"
	OutcomeFailed   = "failed"
)

var (
	// RequestDuration tracks request latency by method, route pattern and status.
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)

	RequestTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests.",
		},
		[]string{"method", "route", "status"},
	)

	RequestInFlight = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "requests_in_flight",
		Help:      "Number of HTTP requests currently being served.",
	})

	// MutationsTotal counts mutation results by name and outcome.
	MutationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "graphql",
			Name:      "mutations_total",
			Help:      "Total GraphQL mutations by outcome.",
		},
		[]string{"mutation", "outcome"},
	)

	// RecordsCreated counts persisted entities by kind.
	RecordsCreated = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "records_created_total",
			Help:      "Total customers, products and orders persisted.",
		},
		[]string{"kind"},
	)

	// ReminderRuns counts reminder job runs by outcome.
	ReminderRuns = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "reminder",
			Name:      "runs_total",
			Help:      "Total reminder job runs by outcome.",
		},
		[]string{"outcome"},
	)

	RemindersWritten = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "reminder",
		Name:      "lines_written_total",
		Help:      "Total reminder lines appended to the log.",
	})
)

// DefaultRegistry holds every collector served on /metrics
var DefaultRegistry = prometheus.NewRegistry()

func init() {
	DefaultRegistry.MustRegister(collectors.NewGoCollector())
	DefaultRegistry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	DefaultRegistry.MustRegister(
		RequestDuration,
		RequestTotal,
		RequestInFlight,
		MutationsTotal,
		RecordsCreated,
		ReminderRuns,
		RemindersWritten,
	)
}

// RecordMutation increments the mutation counter
func RecordMutation(mutation, outcome string) {
	MutationsTotal.WithLabelValues(mutation, outcome).Inc()
}

// RecordCreated adds n persisted records of kind
func RecordCreated(kind string, n int) {
	if n > 0 {
		RecordsCreated.WithLabelValues(kind).Add(float64(n))
	}
}

// RecordReminderRun counts one job run and the reminder lines it wrote
func RecordReminderRun(ok bool, reminders int) {
	outcome := "success"
	if !ok {
		outcome = "failure"
	}
	ReminderRuns.WithLabelValues(outcome).Inc()

	if reminders > 0 {
		RemindersWritten.Add(float64(reminders))
	}
}

// Middleware records duration, count and in-flight requests.
// Routes are labelled by chi pattern to keep cardinality bounded.
func Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			RequestInFlight.Inc()
			defer RequestInFlight.Dec()

			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			route := r.URL.Path
			if rctx := chi.RouteContext(r.Context()); rctx != nil {
				if pattern := rctx.RoutePattern(); pattern != "" {
					route = pattern
				}
			}

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			code := strconv.Itoa(status)

			RequestDuration.WithLabelValues(r.Method, route, code).Observe(time.Since(start).Seconds())
			RequestTotal.WithLabelValues(r.Method, route, code).Inc()
		})
	}
}

// Handler serves the registry in Prometheus text and OpenMetrics formats
func Handler() http.HandlerFunc {
	h := promhttp.HandlerFor(DefaultRegistry, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
	})
	return h.ServeHTTP
}
