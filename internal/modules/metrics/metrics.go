// Package metrics exposes the process's Prometheus collectors.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Checkouts counts checkout attempts by outcome
	// (completed, rejected, failed).
	Checkouts = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "pharmacare",
		Name:      "checkouts_total",
		Help:      "Checkout attempts by outcome.",
	}, []string{"outcome"})

	// StockMovements counts ledger movements by type.
	StockMovements = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "pharmacare",
		Name:      "stock_movements_total",
		Help:      "Stock movements recorded, by movement type.",
	}, []string{"type"})

	// Refunds counts refunded sales.
	Refunds = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "pharmacare",
		Name:      "refunds_total",
		Help:      "Sales refunded.",
	})
)

// Handler returns the /metrics endpoint handler.
func Handler() http.Handler { return promhttp.Handler() }
