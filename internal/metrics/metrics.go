// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "shophub_http_requests_total",
		Help: "HTTP requests by route, method and status code.",
	}, []string{"route", "method", "status"})

	HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "shophub_http_request_duration_seconds",
		Help:    "HTTP request latency by route.",
		Buckets: prometheus.DefBuckets,
	}, []string{"route", "method"})

	OrdersCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "shophub_orders_created_total",
		Help: "Pending orders created at checkout start.",
	})

	OrderStatusChanges = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "shophub_order_status_changes_total",
		Help: "Committed order status changes by target status and source.",
	}, []string{"status", "source"})

	WebhookEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "shophub_stripe_webhook_events_total",
		Help: "Verified Stripe webhook events by type and outcome.",
	}, []string{"type", "outcome"})

	DispatchJobs = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "shophub_dispatch_jobs_total",
		Help: "Best-effort background jobs by name and result.",
	}, []string{"job", "result"})
)
