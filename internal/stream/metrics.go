package stream

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	activeConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "stream_active_connections",
			Help: "Number of currently open live event streams",
		},
	)

	eventsPushed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stream_events_pushed_total",
			Help: "Total events delivered to a live stream",
		},
		[]string{"type"},
	)

	eventsDropped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stream_events_dropped_total",
			Help: "Total events dropped because no healthy stream was registered",
		},
		[]string{"reason"},
	)
)
