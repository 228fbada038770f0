// Package metrics provides Prometheus instrumentation for the chat core.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// WSConnected is 1 while the session socket is open.
	WSConnected = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "chat_ws_connected",
			Help: "Whether the realtime connection is currently open",
		},
	)

	// WSConnectAttempts counts dial attempts by result.
	WSConnectAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chat_ws_connect_attempts_total",
			Help: "Realtime connection dial attempts",
		},
		[]string{"result"},
	)

	// WSReconnectsScheduled counts reconnect timers armed after a close.
	WSReconnectsScheduled = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "chat_ws_reconnects_scheduled_total",
			Help: "Reconnect attempts scheduled after the connection closed",
		},
	)

	// WSFramesReceived counts inbound frames by event type.
	WSFramesReceived = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chat_ws_frames_received_total",
			Help: "Inbound realtime frames by event type",
		},
		[]string{"type"},
	)

	// WSFramesSent counts outbound frames by kind.
	WSFramesSent = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chat_ws_frames_sent_total",
			Help: "Outbound realtime frames by kind",
		},
		[]string{"type"},
	)

	// WSFramesDropped counts frames discarded in either direction.
	WSFramesDropped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chat_ws_frames_dropped_total",
			Help: "Realtime frames dropped, by reason",
		},
		[]string{"reason"},
	)

	// MessagesDeduplicated counts appends rejected because the id was already present.
	MessagesDeduplicated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "chat_messages_deduplicated_total",
			Help: "Messages ignored because their id was already in the timeline",
		},
	)

	// PresenceReports counts local status reports.
	PresenceReports = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chat_presence_reports_total",
			Help: "Local presence reports sent to the backend",
		},
		[]string{"status", "result"},
	)

	// RESTRequests counts calls to the marketplace REST API.
	RESTRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chat_rest_requests_total",
			Help: "Marketplace REST API calls by operation and result",
		},
		[]string{"op", "result"},
	)
)

// Frame drop reasons.
const (
	DropMalformed    = "malformed"
	DropUnknownType  = "unknown_type"
	DropOffline      = "offline"
	DropRateLimited  = "rate_limited"
	DropUnsubscribed = "unsubscribed"
	DropWriteError   = "write_error"
)

// Result returns the label value for an outcome.
func Result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

// SetConnected records the connection state.
func SetConnected(connected bool) {
	if connected {
		WSConnected.Set(1)
		return
	}
	WSConnected.Set(0)
}
