package notifier

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	sendTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "podvis_notification_send_total",
			Help: "Notification deliveries by sender and result.",
		},
		[]string{"sender", "result"},
	)
	sendDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "podvis_notification_send_duration_seconds",
			Help:    "Duration of notification HTTP requests.",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"sender", "result"},
	)
)
