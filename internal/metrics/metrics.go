// Package metrics exposes prometheus collectors for the ledger.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the ledger's collectors on a private registry, so tests can
// create isolated instances.
type Metrics struct {
	registry   *prometheus.Registry
	operations *prometheus.CounterVec
	requests   *prometheus.HistogramVec
}

// New creates a registry with the ledger collectors registered.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "toolledger_operations_total",
			Help: "Ledger operations by name and outcome.",
		}, []string{"op", "outcome"}),
		requests: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "toolledger_http_request_duration_seconds",
			Help:    "HTTP request duration by method and path pattern.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path"}),
	}
	m.registry.MustRegister(m.operations, m.requests)
	return m
}

// ObserveOperation records one ledger operation outcome.
func (m *Metrics) ObserveOperation(op string, err error) {
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	m.operations.WithLabelValues(op, outcome).Inc()
}

// ObserveRequest records one HTTP request duration.
func (m *Metrics) ObserveRequest(method, path string, duration time.Duration) {
	m.requests.WithLabelValues(method, path).Observe(duration.Seconds())
}

// Handler serves the registry in prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
