// Package metrics owns the Prometheus registry and the engine's query
// metrics, and exposes them on /metrics.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// DefaultBuckets are the query duration buckets (in seconds).
var DefaultBuckets = []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60}

// Query outcomes.
const (
	OutcomeOK          = "ok"
	OutcomeInvalid     = "invalid_argument"
	OutcomeNotFound    = "not_found"
	OutcomeUnavailable = "unavailable"
	OutcomeInternal    = "internal"
)

// Registry holds the engine's collectors.
type Registry struct {
	reg      *prometheus.Registry
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
	breaker  prometheus.Gauge
}

// New creates a registry with the query metrics plus Go runtime and
// process collectors.
func New() *Registry {
	r := &Registry{
		reg: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "parlgraph_requests_total",
			Help: "Engine operations by outcome.",
		}, []string{"op", "outcome"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "parlgraph_request_duration_seconds",
			Help:    "Engine operation latency.",
			Buckets: DefaultBuckets,
		}, []string{"op"}),
		breaker: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "parlgraph_breaker_state",
			Help: "Graph store circuit breaker state (0 closed, 1 open, 2 half-open).",
		}),
	}
	r.reg.MustRegister(
		r.requests,
		r.duration,
		r.breaker,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return r
}

// Observe records one finished operation.
func (r *Registry) Observe(op, outcome string, d time.Duration) {
	r.requests.WithLabelValues(op, outcome).Inc()
	r.duration.WithLabelValues(op).Observe(d.Seconds())
}

// SetBreakerState records the breaker state as its numeric value.
func (r *Registry) SetBreakerState(state int) {
	r.breaker.Set(float64(state))
}

// Handler returns an http.Handler that serves the metrics.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{})
}

