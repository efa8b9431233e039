// Package metrics provides centralized Prometheus metrics for the application.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP metrics track HTTP request patterns and performance
var (
	// HTTPRequestsTotal counts total HTTP requests by method, path, and status
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	// HTTPRequestDuration measures HTTP request duration in seconds.
	// Buckets cover 5ms (cached pages) up to 10s.
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"method", "path", "status"},
	)

	// HTTPRequestsInFlight tracks requests currently being served
	HTTPRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_requests_in_flight",
			Help: "Current number of HTTP requests being served",
		},
	)

	// HTTPRequestSize measures HTTP request body size in bytes
	HTTPRequestSize = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_size_bytes",
			Help:    "HTTP request size in bytes",
			Buckets: prometheus.ExponentialBuckets(100, 10, 8),
		},
		[]string{"method", "path"},
	)

	// HTTPResponseSize measures HTTP response body size in bytes
	HTTPResponseSize = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_response_size_bytes",
			Help:    "HTTP response size in bytes",
			Buckets: prometheus.ExponentialBuckets(100, 10, 8),
		},
		[]string{"method", "path"},
	)
)

// Business metrics track blog activity
var (
	// CommentsCreatedTotal counts comments stored
	CommentsCreatedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "comments_created_total",
			Help: "Total number of comments created",
		},
	)

	// CommentsDiscardedTotal counts comment submissions that were accepted
	// by the form but not stored
	CommentsDiscardedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "comments_discarded_total",
			Help: "Total number of comment submissions not stored",
		},
		[]string{"reason"}, // reason: empty, rate_limited
	)

	// ArticlesTotal tracks total number of articles in database
	ArticlesTotal = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "articles_total",
			Help: "Total number of articles in the database",
		},
	)
)

// Database metrics track connection pool usage
var (
	// DBConnectionsActive tracks in-use database connections
	DBConnectionsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "db_connections_active",
			Help: "Number of active database connections",
		},
	)

	// DBConnectionsIdle tracks idle database connections
	DBConnectionsIdle = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "db_connections_idle",
			Help: "Number of idle database connections",
		},
	)

	// DBConnectionsWaited mirrors sql.DBStats.WaitCount, the number of
	// times a caller had to wait for a free connection
	DBConnectionsWaited = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "db_connections_waited",
			Help: "Cumulative number of waits for a database connection",
		},
	)
)

// Resilience metrics track the database circuit breaker
var (
	// CircuitBreakerState is 0 closed, 1 half-open, 2 open
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"circuit"},
	)

	// CircuitBreakerRejectedTotal counts calls refused without reaching the database
	CircuitBreakerRejectedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_rejected_total",
			Help: "Total number of calls rejected by an open or saturated circuit breaker",
		},
		[]string{"circuit"},
	)
)


// Auth metrics track logins, token issuance and access denials
var (
	// AuthAttemptsTotal counts credential checks by route, role and result
	AuthAttemptsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auth_attempts_total",
			Help: "Total credential checks by route, role and result",
		},
		[]string{"route", "role", "result"}, // route: login | token, result: success | failure
	)

	// AuthDuration measures credential checks. bcrypt dominates, so buckets start at 10ms.
	AuthDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "auth_duration_seconds",
			Help:    "Credential check duration in seconds",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1.0},
		},
		[]string{"route"},
	)

	// AuthDeniedTotal counts requests turned away by the session middleware
	AuthDeniedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auth_denied_total",
			Help: "Requests denied by the session middleware",
		},
		[]string{"reason", "role"}, // reason: login_redirect | unauthorized | forbidden
	)
)

// RateLimitedTotal counts requests refused by a per-IP limiter
var RateLimitedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "rate_limited_requests_total",
		Help: "Total number of requests refused by a rate limiter",
	},
	[]string{"limiter"},
)
