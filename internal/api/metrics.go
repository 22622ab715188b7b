package api

import (
	"github.com/prometheus/client_golang/prometheus"
)

type Metrics struct {
	OrdersCreated   prometheus.Counter
	OrdersCancelled prometheus.Counter
	StockConflicts  prometheus.Counter
	Payments        *prometheus.CounterVec
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		OrdersCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "orders_created_total",
			Help: "Orders placed successfully.",
		}),
		OrdersCancelled: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "orders_cancelled_total",
			Help: "Orders cancelled with stock restored.",
		}),
		StockConflicts: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "orders_stock_conflicts_total",
			Help: "Order placements rejected for insufficient stock.",
		}),
		Payments: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "payments_total",
			Help: "Payment attempts by outcome.",
		}, []string{"status"}),
	}

	reg.MustRegister(m.OrdersCreated, m.OrdersCancelled, m.StockConflicts, m.Payments)
	return m
}
