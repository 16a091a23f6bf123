// Package metrics exposes Prometheus collectors for update runs and the
// admin API.
package metrics

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "seinfeld"

// Metrics groups the collectors. A nil *Metrics records nothing.
type Metrics struct {
	PersonsProcessed *prometheus.CounterVec
	NewDays          prometheus.Counter
	RunDuration      prometheus.Histogram
	PassDuration     prometheus.Histogram
	HTTPRequests     *prometheus.CounterVec
	HTTPDuration     *prometheus.HistogramVec
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		PersonsProcessed: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "persons_processed_total",
				Help:      "Persons processed by the updater, by outcome",
			},
			[]string{"outcome"},
		),
		NewDays: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "new_days_total",
				Help:      "Active days recorded",
			},
		),
		RunDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "person_update_duration_seconds",
				Help:      "Duration of a single person update",
				Buckets:   prometheus.DefBuckets,
			},
		),
		PassDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "update_pass_duration_seconds",
				Help:      "Duration of a pass over all active persons",
				Buckets:   prometheus.ExponentialBuckets(1, 2, 12),
			},
		),
		HTTPRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"path", "method", "status"},
		),
		HTTPDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "Duration of HTTP requests",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"path", "method"},
		),
	}

	if reg != nil {
		reg.MustRegister(
			m.PersonsProcessed,
			m.NewDays,
			m.RunDuration,
			m.PassDuration,
			m.HTTPRequests,
			m.HTTPDuration,
		)
	}
	return m
}

// Outcomes of a person update.
const (
	OutcomeUpdated  = "updated"
	OutcomeDisabled = "disabled"
	OutcomeError    = "error"
)

func (m *Metrics) ObserveRun(outcome string, newDays int, d time.Duration) {
	if m == nil {
		return
	}
	m.PersonsProcessed.WithLabelValues(outcome).Inc()
	m.NewDays.Add(float64(newDays))
	m.RunDuration.Observe(d.Seconds())
}

func (m *Metrics) ObservePass(d time.Duration) {
	if m == nil {
		return
	}
	m.PassDuration.Observe(d.Seconds())
}

// Middleware records request counts and latencies by route template.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	if m == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(ww, r)

		path := r.URL.Path
		if route := mux.CurrentRoute(r); route != nil {
			if tmpl, err := route.GetPathTemplate(); err == nil {
				path = tmpl
			}
		}
		m.HTTPRequests.WithLabelValues(path, r.Method, http.StatusText(ww.statusCode)).Inc()
		m.HTTPDuration.WithLabelValues(path, r.Method).Observe(time.Since(start).Seconds())
	})
}

type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}
