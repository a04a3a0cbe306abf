package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Business metrics
	MessagesReceivedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "multibot_messages_received_total",
		Help: "Inbound messages by bot and channel",
	}, []string{"bot", "channel"})

	RepliesSentTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "multibot_replies_sent_total",
		Help: "Bot replies by bot and channel",
	}, []string{"bot", "channel"})

	LinksSentTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "multibot_links_sent_total",
		Help: "Booking links delivered by bot and source",
	}, []string{"bot", "source"})

	TokensUsedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "multibot_tokens_used_total",
		Help: "Model tokens consumed by bot and direction",
	}, []string{"bot", "direction"})

	ActiveVoiceSessions = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "multibot_active_voice_sessions",
		Help: "Open media stream sessions",
	})

	ReplyLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "multibot_reply_latency_seconds",
		Help:    "Time from inbound message to generated reply",
		Buckets: prometheus.DefBuckets,
	})

	// Infrastructure metrics
	FirestoreLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "multibot_firestore_latency_seconds",
		Help:    "Firestore operation latency",
		Buckets: prometheus.DefBuckets,
	})

	UsageEventsQueuedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "multibot_usage_events_queued_total",
		Help: "Usage events enqueued for the billing worker",
	})
)
