package websocket

import "github.com/prometheus/client_golang/prometheus"

var (
	wsConnections = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "livechat_ws_connections",
			Help: "Current number of active websocket connections.",
		},
	)
	wsFramesDelivered = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "livechat_ws_frames_delivered_total",
			Help: "Total websocket frames queued for delivery to clients.",
		},
	)
)

func init() {
	prometheus.MustRegister(wsConnections, wsFramesDelivered)
}

func incConnections() {
	wsConnections.Inc()
}

func decConnections() {
	wsConnections.Dec()
}

func incDelivered() {
	wsFramesDelivered.Inc()
}
