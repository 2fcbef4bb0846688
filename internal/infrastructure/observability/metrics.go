package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the Prometheus metrics of the CRM API.
type Metrics struct {
	// Registry owns these metrics and backs the /metrics endpoint.
	Registry *prometheus.Registry

	requestDuration *prometheus.HistogramVec
	serverErrors    *prometheus.CounterVec
	digestsSent     *prometheus.CounterVec
}

// NewMetrics registers all metrics in a private registry, so it can be
// called more than once (e.g. in tests) without duplicate-collector panics.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		Registry: reg,

		requestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "crm_http_request_duration_seconds",
				Help:    "Duration of HTTP requests by route and status.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route", "status"},
		),
		serverErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "crm_server_errors_total",
				Help: "Requests answered with a 5xx, usually a store or backend failure.",
			},
			[]string{"route"},
		),
		digestsSent: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "crm_digests_total",
				Help: "Notification digest runs by outcome.",
			},
			[]string{"outcome"},
		),
	}
}

func (m *Metrics) RecordRequest(method, route string, status int, d time.Duration) {
	m.requestDuration.WithLabelValues(method, route, strconv.Itoa(status)).Observe(d.Seconds())
}

func (m *Metrics) IncrServerError(route string) {
	m.serverErrors.WithLabelValues(route).Inc()
}

func (m *Metrics) IncrDigest(outcome string) {
	m.digestsSent.WithLabelValues(outcome).Inc()
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})
}
