package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP metrics
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "batepapo_http_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "batepapo_http_request_duration_seconds",
			Help:    "HTTP request duration",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		},
		[]string{"method", "path"},
	)

	// Business metrics
	ParticipantsRegistered = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "batepapo_participants_registered_total",
			Help: "Total participants registered",
		},
	)

	MessagesSent = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "batepapo_messages_sent_total",
			Help: "Total messages stored",
		},
		[]string{"type"}, // "message", "private_message" or "status"
	)

	Heartbeats = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "batepapo_heartbeats_total",
			Help: "Total heartbeats received",
		},
	)

	// Reaper metrics
	ReaperSweeps = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "batepapo_reaper_sweeps_total",
			Help: "Total reaper firings",
		},
	)

	ParticipantsReaped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "batepapo_participants_reaped_total",
			Help: "Total participants evicted for inactivity",
		},
	)

	ReaperErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "batepapo_reaper_errors_total",
			Help: "Total per-item failures during reaper sweeps",
		},
	)

	// Rate limit metrics
	RateLimitHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "batepapo_rate_limit_hits_total",
			Help: "Total rate limit hits",
		},
		[]string{"endpoint"},
	)
)
