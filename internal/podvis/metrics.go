package podvis

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	brokerClients = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "podvis_listener_clients",
		Help: "Attached event-stream clients.",
	})
	brokerBroadcasts = promauto.NewCounter(prometheus.CounterOpts{
		Name: "podvis_listener_broadcasts_total",
		Help: "Messages broadcast to attached clients.",
	})
	brokerDropped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "podvis_listener_dropped_total",
		Help: "Messages dropped because a client buffer was full.",
	})
	reflectedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "podvis_listener_reflected_total",
		Help: "Notifications received by the reflector, by result.",
	}, []string{"result"})
)
