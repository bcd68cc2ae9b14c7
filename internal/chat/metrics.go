package chat

import "github.com/prometheus/client_golang/prometheus"

var (
	messagesRelayed = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "livechat_messages_relayed_total",
			Help: "Total chat messages persisted and fanned out by the relay.",
		},
	)
	notificationsSent = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "livechat_agent_notifications_total",
			Help: "Total payloads delivered to agent connections by the broadcaster.",
		},
	)
	trackedRooms = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "livechat_registry_rooms",
			Help: "Chat rooms currently tracked by the presence registry.",
		},
	)
)

func init() {
	prometheus.MustRegister(messagesRelayed, notificationsSent, trackedRooms)
}
