// Package metrics exposes Prometheus instrumentation for broker calls and credential operations.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outcome label values
const (
	OutcomeSuccess = "success"
	OutcomeError   = "error"
)

// Metrics holds all Prometheus metrics for the service.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	BrokerRequestDur     *prometheus.HistogramVec // labels: broker, operation, outcome
	PriceFallbacks       *prometheus.CounterVec   // labels: broker
	CredentialOperations *prometheus.CounterVec   // labels: operation, outcome
}

// New creates the metrics on a private registry, alongside Go runtime and process collectors
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		BrokerRequestDur: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "aura_broker_request_duration_seconds",
			Help:    "Latency of outbound brokerage API calls",
			Buckets: prometheus.DefBuckets,
		}, []string{"broker", "operation", "outcome"}),
		PriceFallbacks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "aura_price_fallback_total",
			Help: "Holdings views served with average prices because live prices were unavailable",
		}, []string{"broker"}),
		CredentialOperations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "aura_credential_operations_total",
			Help: "Connect, update and disconnect operations by outcome",
		}, []string{"operation", "outcome"}),
	}

	m.registry.MustRegister(
		m.BrokerRequestDur,
		m.PriceFallbacks,
		m.CredentialOperations,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Registry returns the registry the metrics are registered on
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// ObserveBrokerRequest records the latency of one brokerage API call
func (m *Metrics) ObserveBrokerRequest(broker, operation string, err error, started time.Time) {
	if m == nil {
		return
	}
	m.BrokerRequestDur.WithLabelValues(broker, operation, outcome(err)).Observe(time.Since(started).Seconds())
}

// IncPriceFallback counts a holdings view that fell back to average prices
func (m *Metrics) IncPriceFallback(broker string) {
	if m == nil {
		return
	}
	m.PriceFallbacks.WithLabelValues(broker).Inc()
}

// IncCredentialOperation counts a connect, update or disconnect
func (m *Metrics) IncCredentialOperation(operation string, err error) {
	if m == nil {
		return
	}
	m.CredentialOperations.WithLabelValues(operation, outcome(err)).Inc()
}

func outcome(err error) string {
	if err != nil {
		return OutcomeError
	}
	return OutcomeSuccess
}
