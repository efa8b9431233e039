package circuitbreaker

import (
	"context"
	"database/sql"
	"time"

	"github.com/sony/gobreaker"
)

// DBCircuitBreaker wraps *sql.DB with breaker protection.
// It satisfies db.Querier, so repositories take it in place of the raw pool.
type DBCircuitBreaker struct {
	cb *CircuitBreaker
	db *sql.DB
}

// DBConfig opens the breaker after 5 consecutive faults and probes again after 30s.
func DBConfig() Config {
	return Config{
		Name:             "database",
		MaxRequests:      3,
		Interval:         time.Minute,
		Timeout:          30 * time.Second,
		FailureThreshold: 1.0,
		MinRequests:      5,
	}
}

// NewDBCircuitBreaker wraps db using DBConfig.
func NewDBCircuitBreaker(db *sql.DB) *DBCircuitBreaker {
	return NewDBCircuitBreakerWithConfig(db, DBConfig())
}

// NewDBCircuitBreakerWithConfig wraps db using cfg.
func NewDBCircuitBreakerWithConfig(db *sql.DB, cfg Config) *DBCircuitBreaker {
	return &DBCircuitBreaker{cb: New(cfg), db: db}
}

func (d *DBCircuitBreaker) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	result, err := d.cb.Execute(func() (any, error) {
		return d.db.QueryContext(ctx, query, args...)
	})
	if err != nil {
		return nil, err
	}
	return result.(*sql.Rows), nil
}

func (d *DBCircuitBreaker) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	result, err := d.cb.Execute(func() (any, error) {
		return d.db.ExecContext(ctx, query, args...)
	})
	if err != nil {
		return nil, err
	}
	return result.(sql.Result), nil
}

// QueryRowContext goes straight to the pool while the breaker is closed:
// *sql.Row defers its error until Scan, so there is nothing to count. While
// the breaker is open the call still reaches the database; repositories see
// the real error on Scan.
func (d *DBCircuitBreaker) QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row {
	return d.db.QueryRowContext(ctx, query, args...)
}

// PingContext checks connectivity through the breaker, so readiness probes
// report unready while the breaker is open.
func (d *DBCircuitBreaker) PingContext(ctx context.Context) error {
	_, err := d.cb.Execute(func() (any, error) {
		return nil, d.db.PingContext(ctx)
	})
	return err
}

// State returns the current state of the circuit breaker.
func (d *DBCircuitBreaker) State() gobreaker.State {
	return d.cb.State()
}

// IsOpen reports whether the breaker is rejecting calls.
func (d *DBCircuitBreaker) IsOpen() bool {
	return d.cb.IsOpen()
}

// DB returns the underlying pool.
func (d *DBCircuitBreaker) DB() *sql.DB {
	return d.db
}
