package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Dispatches records notification dispatches by outcome
	// (delivered|undelivered|suppressed|panic).
	Dispatches = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "loadlane_notification_dispatches_total",
			Help: "Total number of notification dispatches",
		},
		[]string{"type", "outcome"},
	)

	// ChannelAttempts counts per-channel delivery attempts and their terminal status.
	ChannelAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "loadlane_notification_channel_attempts_total",
			Help: "Total number of channel delivery attempts",
		},
		[]string{"channel", "status"},
	)

	// DispatchLatency measures end-to-end dispatch duration.
	DispatchLatency = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "loadlane_notification_dispatch_seconds",
			Help:    "Notification dispatch latency",
			Buckets: prometheus.DefBuckets,
		},
	)
)
