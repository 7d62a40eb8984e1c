// Package metrics exposes the Prometheus instruments shared by both
// services.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	OrdersCreated *prometheus.CounterVec
	StockEvents   *prometheus.CounterVec
}

// New registers the counters on a fresh registry and returns the handler
// for the /metrics endpoint alongside them.
func New(service string) (*Metrics, http.Handler) {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		OrdersCreated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "orderstock",
			Subsystem: service,
			Name:      "orders_created_total",
			Help:      "Order creation attempts by outcome.",
		}, []string{"status"}),
		StockEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "orderstock",
			Subsystem: service,
			Name:      "stock_events_total",
			Help:      "Order events handled by the stock side, by outcome.",
		}, []string{"status"}),
	}
	registry.MustRegister(m.OrdersCreated, m.StockEvents)

	return m, promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
}

// Nop returns metrics that record into an unexported registry, for tests
// and wiring paths that do not serve /metrics.
func Nop() *Metrics {
	m, _ := New("nop")
	return m
}
