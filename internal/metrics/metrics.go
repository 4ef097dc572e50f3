package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// SessionsConnected tracks currently open websocket sessions.
	SessionsConnected = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "chatrelay",
		Name:      "sessions_connected",
		Help:      "Current number of open websocket sessions",
	})

	// RoomsOpen and RoomMembers are refreshed by the stats reporter job.
	RoomsOpen = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "chatrelay",
		Name:      "rooms_open",
		Help:      "Current number of active rooms",
	})

	RoomMembers = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "chatrelay",
		Name:      "room_members",
		Help:      "Current number of room members across all rooms",
	})

	MessagesRelayed = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "chatrelay",
		Name:      "messages_relayed_total",
		Help:      "Total chat messages broadcast to rooms",
	})

	AIRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "chatrelay",
		Name:      "ai_requests_total",
		Help:      "Total AI relay requests by outcome",
	}, []string{"status"})

	LinkPreviews = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "chatrelay",
		Name:      "link_previews_total",
		Help:      "Total link preview fetches by outcome",
	}, []string{"status"})
)
