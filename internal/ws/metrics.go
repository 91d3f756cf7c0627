package ws

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	connectionsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "ws_connections_active",
			Help: "Number of open realtime connections",
		},
	)

	eventsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "realtime_events_published_total",
			Help: "Realtime events published, by event name",
		},
		[]string{"event"},
	)

	slowClientsDropped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "ws_slow_clients_dropped_total",
			Help: "Connections dropped because their send buffer was full",
		},
	)
)
