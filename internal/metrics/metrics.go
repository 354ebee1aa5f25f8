package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests by route and status",
		},
		[]string{"method", "route", "status"},
	)

	HTTPDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	NotificationsDelivered = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notifications_delivered_total",
			Help: "Push notification delivery attempts by result",
		},
		[]string{"result"},
	)

	NotificationDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name: "notification_delivery_duration_seconds",
			Help: "Duration of a single notification delivery",
		},
	)

	WorkerJobsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "worker_jobs_active",
			Help: "Number of notifications currently being delivered",
		},
	)

	QueueRequeued = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "notification_queue_requeued_total",
			Help: "Claims moved back from processing lists by the reaper",
		},
	)

	PaymentVerifications = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "payment_verifications_total",
			Help: "Payment verifications by gateway state",
		},
		[]string{"state"},
	)
)
