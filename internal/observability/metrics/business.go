package metrics

import (
	"database/sql"
	"strconv"
	"time"
)

// Comment discard reasons.
const (
	DiscardEmpty       = "empty"
	DiscardRateLimited = "rate_limited"
)

// RecordHTTPRequest records an HTTP request with its metadata.
// path must already be normalised (see pathutil.NormalizePath).
func RecordHTTPRequest(method, path string, status int, duration time.Duration, requestSize int64, responseSize int) {
	code := strconv.Itoa(status)
	HTTPRequestsTotal.WithLabelValues(method, path, code).Inc()
	HTTPRequestDuration.WithLabelValues(method, path, code).Observe(duration.Seconds())

	if requestSize > 0 {
		HTTPRequestSize.WithLabelValues(method, path).Observe(float64(requestSize))
	}
	HTTPResponseSize.WithLabelValues(method, path).Observe(float64(responseSize))
}

// RecordCommentCreated records a stored comment.
func RecordCommentCreated() {
	CommentsCreatedTotal.Inc()
}

// RecordCommentDiscarded records a submission that redirected without storing anything.
func RecordCommentDiscarded(reason string) {
	CommentsDiscardedTotal.WithLabelValues(reason).Inc()
}

// UpdateArticlesTotal updates the total count of articles in the database.
func UpdateArticlesTotal(count int64) {
	ArticlesTotal.Set(float64(count))
}

// RecordDBStats copies pool statistics into the connection gauges.
func RecordDBStats(stats sql.DBStats) {
	DBConnectionsActive.Set(float64(stats.InUse))
	DBConnectionsIdle.Set(float64(stats.Idle))
	DBConnectionsWaited.Set(float64(stats.WaitCount))
}

// RecordBreakerState publishes a breaker transition.
func RecordBreakerState(circuit string, state int) {
	CircuitBreakerState.WithLabelValues(circuit).Set(float64(state))
}

// RecordBreakerRejected counts a call the breaker refused.
func RecordBreakerRejected(circuit string) {
	CircuitBreakerRejectedTotal.WithLabelValues(circuit).Inc()
}

// Auth routes and denial reasons.
const (
	AuthRouteLogin = "login"
	AuthRouteToken = "token"

	DeniedLoginRedirect = "login_redirect"
	DeniedUnauthorized  = "unauthorized"
	DeniedForbidden     = "forbidden"
)

// RecordAuthAttempt records one credential check and how long it took.
func RecordAuthAttempt(route, role string, ok bool, duration time.Duration) {
	result := "failure"
	if ok {
		result = "success"
	}
	AuthAttemptsTotal.WithLabelValues(route, role, result).Inc()
	AuthDuration.WithLabelValues(route).Observe(duration.Seconds())
}

// RecordAuthDenied records a request the session middleware refused.
func RecordAuthDenied(reason, role string) {
	AuthDeniedTotal.WithLabelValues(reason, role).Inc()
}

// RecordRateLimited records a request refused by the named limiter.
func RecordRateLimited(limiter string) {
	RateLimitedTotal.WithLabelValues(limiter).Inc()
}
