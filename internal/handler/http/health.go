// Package http provides the shared HTTP layer of the blog server: the middleware
// chain, health endpoints and the Prometheus metrics middleware. Route handlers
// live in the article, admin and auth subpackages.
package http

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"blog/internal/handler/http/respond"
	"blog/internal/observability/metrics"
)

// Check and report states. Degraded still answers 200.
const (
	StatusHealthy   = "healthy"
	StatusDegraded  = "degraded"
	StatusUnhealthy = "unhealthy"
)

// poolSaturation is the in-use share of MaxOpenConns reported as degraded.
const poolSaturation = 0.8

const (
	healthCheckTimeout = 5 * time.Second
	readyCheckTimeout  = 2 * time.Second
)

// Database is the part of *sql.DB the probes need.
type Database interface {
	PingContext(ctx context.Context) error
	Stats() sql.DBStats
}

// BreakerState reports whether the database circuit breaker is open.
type BreakerState interface {
	IsOpen() bool
}

// HealthReport is the /health body.
type HealthReport struct {
	Status    string           `json:"status"`
	Timestamp string           `json:"timestamp"`
	Version   string           `json:"version"`
	Checks    map[string]Check `json:"checks"`
}

// Check is the outcome of one dependency probe.
type Check struct {
	Status  string         `json:"status"`
	Message string         `json:"message,omitempty"`
	Details map[string]any `json:"details,omitempty"`
}

// HealthHandler serves GET /health: a database ping with pool statistics and
// the breaker state. Any unhealthy check turns the report unhealthy with 503.
type HealthHandler struct {
	DB      Database
	Breaker BreakerState
	Version string
}

func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
	defer cancel()

	checks := map[string]Check{"database": h.checkDatabase(ctx)}
	if h.Breaker != nil {
		checks["circuit_breaker"] = h.checkBreaker()
	}

	report := HealthReport{
		Status:    overall(checks),
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Version:   h.Version,
		Checks:    checks,
	}

	code := http.StatusOK
	if report.Status == StatusUnhealthy {
		code = http.StatusServiceUnavailable
	}
	w.Header().Set("Cache-Control", "no-store")
	respond.JSON(w, code, report)
}

// overall is the worst status among checks.
func overall(checks map[string]Check) string {
	status := StatusHealthy
	for _, c := range checks {
		switch c.Status {
		case StatusUnhealthy:
			return StatusUnhealthy
		case StatusDegraded:
			status = StatusDegraded
		}
	}
	return status
}

func (h *HealthHandler) checkDatabase(ctx context.Context) Check {
	if h.DB == nil {
		return Check{Status: StatusUnhealthy, Message: "not configured"}
	}
	if err := h.DB.PingContext(ctx); err != nil {
		return Check{Status: StatusUnhealthy, Message: respond.SanitizeError(err)}
	}

	stats := h.DB.Stats()
	metrics.RecordDBStats(stats)

	details := map[string]any{
		"max_open_connections": stats.MaxOpenConnections,
		"open_connections":     stats.OpenConnections,
		"in_use":               stats.InUse,
		"idle":                 stats.Idle,
		"wait_count":           stats.WaitCount,
		"wait_duration_ms":     stats.WaitDuration.Milliseconds(),
	}
	if stats.MaxOpenConnections <= 0 {
		return Check{Status: StatusHealthy, Details: details}
	}

	used := float64(stats.InUse) / float64(stats.MaxOpenConnections)
	details["utilization_percent"] = used * 100
	if used >= poolSaturation {
		return Check{Status: StatusDegraded, Message: "connection pool nearly exhausted", Details: details}
	}
	return Check{Status: StatusHealthy, Details: details}
}

// checkBreaker reports an open breaker as degraded: pages fail fast with 503
// but the process is alive and will probe the database again.
func (h *HealthHandler) checkBreaker() Check {
	if h.Breaker.IsOpen() {
		return Check{Status: StatusDegraded, Message: "database circuit breaker is open"}
	}
	return Check{Status: StatusHealthy}
}

// ReadyHandler serves GET /ready. The instance is ready when the database
// answers a ping and the breaker, if any, is closed.
type ReadyHandler struct {
	DB      Database
	Breaker BreakerState
}

func (h *ReadyHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), readyCheckTimeout)
	defer cancel()

	switch {
	case h.DB == nil:
		http.Error(w, "database not configured", http.StatusServiceUnavailable)
	case h.Breaker != nil && h.Breaker.IsOpen():
		http.Error(w, "database circuit breaker is open", http.StatusServiceUnavailable)
	default:
		if err := h.DB.PingContext(ctx); err != nil {
			http.Error(w, "database not ready", http.StatusServiceUnavailable)
			return
		}
		plain(w, "ready")
	}
}

// Live serves GET /live and answers as long as the process can.
func Live(w http.ResponseWriter, _ *http.Request) {
	plain(w, "alive")
}

func plain(w http.ResponseWriter, body string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(body))
}
