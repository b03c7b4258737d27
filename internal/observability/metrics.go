// Package observability exposes Prometheus metrics for the application.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RedisErrorRate counts Redis errors by operation type.
	RedisErrorRate = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "proxyshare_redis_error_rate_total",
		Help: "Total number of Redis errors by operation type",
	}, []string{"operation"})

	// SessionsIssued counts sessions created after a successful login callback.
	SessionsIssued = promauto.NewCounter(prometheus.CounterOpts{
		Name: "proxyshare_sessions_issued_total",
		Help: "Total number of sessions issued",
	})

	// SessionsDestroyed counts explicit logouts.
	SessionsDestroyed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "proxyshare_sessions_destroyed_total",
		Help: "Total number of sessions destroyed by logout",
	})

	// LoginFailures counts OAuth callback failures by stage (exchange, claims, storage).
	LoginFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "proxyshare_login_failures_total",
		Help: "Total number of failed login callbacks by stage",
	}, []string{"stage"})

	// VotesTotal counts vote outcomes (accepted, duplicate).
	VotesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "proxyshare_votes_total",
		Help: "Total number of validity votes by outcome",
	}, []string{"outcome"})
)
