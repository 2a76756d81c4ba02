package core

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var eventsHandled = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "podvis_forwarder_events_total",
		Help: "Inbound events handled by the forwarder, by outcome.",
	},
	[]string{"outcome"},
)
