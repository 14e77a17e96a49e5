package util

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	OrdersCreatedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "orders_created_total",
		Help: "Total number of orders created",
	})

	QuotesCreatedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "quotes_created_total",
		Help: "Total number of quotes created",
	})

	QuotesConvertedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "quotes_converted_total",
		Help: "Total number of quotes converted to orders",
	})

	OrdersFailedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "orders_failed_total",
		Help: "Total number of failed order operations",
	}, []string{"reason"})

	StockDeductionsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "stock_deductions_total",
		Help: "Total number of orders whose stock was deducted",
	})

	StockDeductionsSkipped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "stock_deductions_skipped_total",
		Help: "Total number of deduction attempts skipped as already applied",
	})

	StockDeductionsFailed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "stock_deductions_failed_total",
		Help: "Total number of failed stock deductions",
	}, []string{"reason"})

	StockDeductionLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "stock_deduction_latency_seconds",
		Help:    "Latency of order stock deduction transactions",
		Buckets: prometheus.DefBuckets,
	})

	RecipeCostRecomputesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "recipe_cost_recomputes_total",
		Help: "Total number of recipe cost recomputations",
	})

	RecipeCostPropagationsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "recipe_cost_propagations_total",
		Help: "Total number of ingredient cost change propagations",
	})

	LowStockAlertsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "low_stock_alerts_total",
		Help: "Total number of low stock alerts published",
	})

	ReportsGeneratedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "reports_generated_total",
		Help: "Total number of reports generated",
	}, []string{"report", "format"})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})
)
