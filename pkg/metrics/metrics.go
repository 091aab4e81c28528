package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// AuthAttempts records authentication attempts by action (signup|login)
	// and result (success|failure).
	AuthAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "meetgrid_auth_attempts_total",
			Help: "Total number of authentication attempts",
		},
		[]string{"action", "result"},
	)

	// FriendRequests counts friendship mutations by action (create|accept|reject|delete).
	FriendRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "meetgrid_friend_requests_total",
			Help: "Total number of friendship state transitions",
		},
		[]string{"action"},
	)

	// Invitations counts invitation mutations by action (create|accept|reject|cancel).
	Invitations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "meetgrid_invitations_total",
			Help: "Total number of event invitation state transitions",
		},
		[]string{"action"},
	)

	// Registrations counts direct event registrations by result (success|rejected).
	Registrations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "meetgrid_event_registrations_total",
			Help: "Total number of direct event registration attempts",
		},
		[]string{"result"},
	)

	// APILatency measures HTTP request latencies.
	APILatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "meetgrid_api_latency_seconds",
			Help:    "API endpoint latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
)
