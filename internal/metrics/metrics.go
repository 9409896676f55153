// Package metrics exposes Prometheus counters for inventory engine outcomes.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outcome labels.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

// Metrics holds the engine collectors. A nil *Metrics is valid and records
// nothing.
type Metrics struct {
	registry   *prometheus.Registry
	operations *prometheus.CounterVec
	quantity   *prometheus.CounterVec
	lowStock   prometheus.Counter
	published  *prometheus.CounterVec
}

// New creates a registry with Go and process collectors and the engine
// counters.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	m := &Metrics{
		registry: reg,
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "zaloga",
			Name:      "operations_total",
			Help:      "Inventory engine operations by operation, outcome and error kind.",
		}, []string{"op", "outcome", "kind"}),
		quantity: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "zaloga",
			Name:      "quantity_moved_total",
			Help:      "Units of stock moved, by ledger reason and direction.",
		}, []string{"reason", "direction"}),
		lowStock: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "zaloga",
			Name:      "low_stock_events_total",
			Help:      "Low-stock events raised after a quantity change.",
		}),
		published: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "zaloga",
			Name:      "events_published_total",
			Help:      "Events handed to the notification sink, by event and outcome.",
		}, []string{"event", "outcome"}),
	}
	reg.MustRegister(m.operations, m.quantity, m.lowStock, m.published)
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Operation counts one engine call. kind is empty on success.
func (m *Metrics) Operation(op, kind string) {
	if m == nil {
		return
	}
	outcome := OutcomeSuccess
	if kind != "" {
		outcome = OutcomeFailure
	}
	m.operations.WithLabelValues(op, outcome, kind).Inc()
}

// Moved counts a committed quantity change.
func (m *Metrics) Moved(reason string, delta int) {
	if m == nil || delta == 0 {
		return
	}
	direction := "in"
	if delta < 0 {
		direction = "out"
		delta = -delta
	}
	m.quantity.WithLabelValues(reason, direction).Add(float64(delta))
}

// LowStock counts a low-stock event.
func (m *Metrics) LowStock() {
	if m == nil {
		return
	}
	m.lowStock.Inc()
}

// Published counts a sink publish attempt.
func (m *Metrics) Published(event string, err error) {
	if m == nil {
		return
	}
	outcome := OutcomeSuccess
	if err != nil {
		outcome = OutcomeFailure
	}
	m.published.WithLabelValues(event, outcome).Inc()
}
