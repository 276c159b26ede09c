package services

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ordersCreatedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "northmart_orders_created_total",
		Help: "Orders successfully created from carts.",
	})
	ordersCancelledTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "northmart_orders_cancelled_total",
		Help: "Orders cancelled, by user action or the auto-cancel sweep.",
	})
	paymentsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "northmart_payments_total",
		Help: "Payment settlements by outcome.",
	}, []string{"outcome"})
	refundsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "northmart_refunds_total",
		Help: "Refunds processed against succeeded payments.",
	})
)
