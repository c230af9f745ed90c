package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP metrics
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "polychat_http_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "polychat_http_request_duration_seconds",
			Help:    "HTTP request duration",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		},
		[]string{"method", "path"},
	)

	// Connection metrics
	LiveConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "polychat_live_connections",
			Help: "Registered realtime connections",
		},
	)

	OnlineIdentities = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "polychat_online_identities",
			Help: "Identities with at least one live connection",
		},
	)

	PresenceTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "polychat_presence_transitions_total",
			Help: "Presence transitions emitted",
		},
		[]string{"status"},
	)

	RejectedHandshakes = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "polychat_rejected_handshakes_total",
			Help: "Websocket handshakes refused for a bad session",
		},
	)

	// Fanout metrics
	FanoutDeliveries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "polychat_fanout_deliveries_total",
			Help: "Frames queued to connections",
		},
		[]string{"target"}, // all, identity, group, client
	)

	DroppedFrames = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "polychat_dropped_frames_total",
			Help: "Frames dropped because a connection queue was full",
		},
	)

	DroppedHooks = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "polychat_dropped_presence_hooks_total",
			Help: "Presence transitions not handed to hooks because the queue was full",
		},
	)

	// Ingest metrics
	MessagesIngested = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "polychat_messages_ingested_total",
			Help: "Messages persisted and fanned out",
		},
		[]string{"kind"}, // direct, room
	)

	IngestFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "polychat_ingest_failures_total",
			Help: "Rejected or failed sends by reason code",
		},
		[]string{"reason"},
	)

	TranslateLatency = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "polychat_translate_latency_seconds",
			Help:    "Upstream translation latency",
			Buckets: []float64{.05, .1, .25, .5, 1, 2.5, 5},
		},
	)

	BusPublishFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "polychat_bus_publish_failures_total",
			Help: "Event bus publish failures",
		},
		[]string{"bus"},
	)
)
