// Package metrics exposes Prometheus instrumentation for the relay.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// ActiveConnections tracks currently open WebSocket connections.
	ActiveConnections = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "dialspace",
		Name:      "active_connections",
		Help:      "Number of open WebSocket connections.",
	})

	// EventsTotal counts inbound client events by type.
	EventsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "dialspace",
		Name:      "events_total",
		Help:      "Inbound client events processed, by type.",
	}, []string{"type"})

	// BroadcastsTotal counts outbound fan-out deliveries.
	BroadcastsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "dialspace",
		Name:      "broadcasts_total",
		Help:      "Events delivered to client send queues.",
	})

	// DroppedTotal counts silently dropped inbound events by reason.
	DroppedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "dialspace",
		Name:      "dropped_total",
		Help:      "Inbound events dropped without client feedback, by reason.",
	}, []string{"reason"})
)

// Drop reasons.
const (
	ReasonRateLimited   = "rate_limited"
	ReasonNudgeCooldown = "nudge_cooldown"
	ReasonMalformed     = "malformed"
	ReasonSlowClient    = "slow_client"
)

// Handler exposes Prometheus metrics at /metrics.
func Handler() http.Handler {
	return promhttp.Handler()
}
