package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/desertthunder/lineup/internal/reconcile"
	"github.com/desertthunder/lineup/internal/shared"
)

// Metrics holds the server's Prometheus collectors in a private registry.
type Metrics struct {
	registry *prometheus.Registry

	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
	moves    *prometheus.CounterVec
	links    *prometheus.CounterVec
}

// NewMetrics registers the server's collectors, plus Go runtime and process collectors, on a new registry.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		requests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "lineup_http_requests_total",
			Help: "HTTP requests by route pattern and status code",
		}, []string{"route", "code"}),
		duration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "lineup_http_request_duration_seconds",
			Help:    "HTTP request latency by route pattern",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		}, []string{"route"}),
		moves: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "lineup_moves_total",
			Help: "Playlist moves and submissions by result",
		}, []string{"result"}),
		links: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "lineup_link_outcomes_total",
			Help: "Scanner link and unlink outcomes by operation and code",
		}, []string{"op", "code"}),
	}
}

// Middleware records request counts and latency keyed by the matched route pattern.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := record(w)

		next.ServeHTTP(rec, r)

		route := routeOf(r)
		m.requests.WithLabelValues(route, strconv.Itoa(rec.status)).Inc()
		m.duration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	})
}

// Handler serves the registry in Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// ObserveMove counts a move or submission: changed, unchanged, skipped, or the error code.
func (m *Metrics) ObserveMove(result string) {
	m.moves.WithLabelValues(result).Inc()
}

// ObserveOutcomes counts per-member link and unlink outcomes.
func (m *Metrics) ObserveOutcomes(outcomes ...reconcile.Outcome) {
	for _, o := range outcomes {
		code := "ok"
		if o.Err != nil {
			code = shared.ErrorCode(o.Err)
		}
		m.links.WithLabelValues(string(o.Op), code).Inc()
	}
}
