package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	UpdatesReceived = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "apply_bot_updates_total",
			Help: "Total number of Telegram updates handled by type.",
		},
		[]string{"type"},
	)

	SessionsStarted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "apply_bot_sessions_started_total",
			Help: "Total number of application sessions started.",
		},
	)

	SessionsCompleted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "apply_bot_sessions_completed_total",
			Help: "Total number of application sessions completed.",
		},
	)

	SessionsCancelled = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "apply_bot_sessions_cancelled_total",
			Help: "Total number of application sessions cancelled.",
		},
	)

	SinkAppends = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "apply_bot_sink_appends_total",
			Help: "Total number of application rows appended by sink.",
		},
		[]string{"sink"},
	)

	SinkAppendFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "apply_bot_sink_append_failures_total",
			Help: "Total number of failed append attempts by sink.",
		},
		[]string{"sink"},
	)

	HTTPRequests = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "apply_bot_http_requests_total",
			Help: "Total number of HTTP requests.",
		},
	)

	HTTPErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "apply_bot_http_errors_total",
			Help: "Total number of 5xx HTTP responses.",
		},
	)
)
