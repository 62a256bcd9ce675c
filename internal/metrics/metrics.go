// Package metrics defines the Prometheus instrumentation surface for the
// room authority server, using promauto's namespaced registration
// convention.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "bloodless"

// Metrics bundles every counter/gauge/histogram the server exposes at
// /metrics. Construct exactly one with New and pass it down to every
// component that instruments something.
type Metrics struct {
	RoomsActive         prometheus.Gauge
	ParticipantsActive  prometheus.Gauge
	ActionsProcessed    *prometheus.CounterVec
	BroadcastLagEvents  *prometheus.CounterVec
	RoomLifetimeSeconds prometheus.Histogram
	ConnectionsRejected *prometheus.CounterVec
}

// New registers every metric against reg and returns the bundle. Call
// once at process startup.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		RoomsActive: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "room",
			Name:      "active",
			Help:      "Number of rooms with a running authority task.",
		}),
		ParticipantsActive: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "participant",
			Name:      "active",
			Help:      "Number of participants currently admitted to a room.",
		}),
		ActionsProcessed: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "room",
			Name:      "actions_processed_total",
			Help:      "Actions a room's authority task has applied, by room id.",
		}, []string{"room_id"}),
		BroadcastLagEvents: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "room",
			Name:      "broadcast_lag_events_total",
			Help:      "Broadcast records dropped because a participant's outbound buffer was full.",
		}, []string{"room_id"}),
		RoomLifetimeSeconds: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "room",
			Name:      "lifetime_seconds",
			Help:      "Wall-clock seconds between a room's creation and its teardown.",
			Buckets:   prometheus.ExponentialBuckets(1, 4, 10),
		}),
		ConnectionsRejected: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "transport",
			Name:      "connections_rejected_total",
			Help:      "WebSocket upgrades rejected, by reason.",
		}, []string{"reason"}),
	}
}
