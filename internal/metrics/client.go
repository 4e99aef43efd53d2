package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// BackendRequests counts finished calls to the Sagipero backend by
	// method and outcome (ok or the error kind).
	BackendRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sagipero_backend_requests_total",
			Help: "Total number of calls to the Sagipero backend",
		},
		[]string{"method", "outcome"},
	)

	// BackendRetries counts retried backend attempts.
	BackendRetries = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "sagipero_backend_retries_total",
			Help: "Total number of retried calls to the Sagipero backend",
		},
	)

	// BackendUp is 1 while the last connectivity probe succeeded.
	BackendUp = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "sagipero_backend_up",
			Help: "Whether the last backend health probe succeeded",
		},
	)

	// RealtimeEvents counts socket events received by name.
	RealtimeEvents = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sagipero_realtime_events_total",
			Help: "Total number of realtime events received",
		},
		[]string{"event"},
	)

	// ActiveSessions is the number of logged-in console sessions.
	ActiveSessions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "sagipero_console_sessions",
			Help: "Number of active console sessions",
		},
	)
)
