package circuitbreaker

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/sony/gobreaker"

	"blog/internal/observability/metrics"
)

func testConfig(name string) Config {
	return Config{
		Name:             name,
		MaxRequests:      1,
		Interval:         10 * time.Second,
		Timeout:          100 * time.Millisecond,
		FailureThreshold: 1.0,
		MinRequests:      3,
	}
}

func fail(cb *CircuitBreaker, err error, n int) {
	for i := 0; i < n; i++ {
		_, _ = cb.Execute(func() (any, error) { return nil, err })
	}
}

func TestNew(t *testing.T) {
	cb := New(testConfig("test-new"))

	if cb.Name() != "test-new" {
		t.Errorf("expected name='test-new', got %q", cb.Name())
	}
	if cb.State() != gobreaker.StateClosed {
		t.Errorf("expected initial state=Closed, got %v", cb.State())
	}
	if got := testutil.ToFloat64(metrics.CircuitBreakerState.WithLabelValues("test-new")); got != 0 {
		t.Errorf("state gauge = %v, want 0", got)
	}
}

func TestCircuitBreaker_ExecutePassesThrough(t *testing.T) {
	cb := New(testConfig("test-pass"))

	result, err := cb.Execute(func() (any, error) { return 42, nil })
	if err != nil || result != 42 {
		t.Errorf("Execute() = %v, %v; want 42, nil", result, err)
	}

	testErr := errors.New("connection reset by peer")
	if _, err := cb.Execute(func() (any, error) { return nil, testErr }); err != testErr {
		t.Errorf("expected the call's own error, got %v", err)
	}
}

func TestCircuitBreaker_TripsOpenAndRejects(t *testing.T) {
	cb := New(testConfig("test-trip"))
	rejected := metrics.CircuitBreakerRejectedTotal.WithLabelValues("test-trip")
	before := testutil.ToFloat64(rejected)

	fail(cb, errors.New("connection refused"), 3)

	if !cb.IsOpen() {
		t.Fatalf("expected open breaker, got %v", cb.State())
	}
	if got := testutil.ToFloat64(metrics.CircuitBreakerState.WithLabelValues("test-trip")); got != float64(gobreaker.StateOpen) {
		t.Errorf("state gauge = %v, want %v", got, float64(gobreaker.StateOpen))
	}

	_, err := cb.Execute(func() (any, error) {
		t.Error("function should not be called when circuit is open")
		return nil, nil
	})
	if !errors.Is(err, ErrUnavailable) {
		t.Errorf("expected ErrUnavailable, got %v", err)
	}
	if !errors.Is(err, gobreaker.ErrOpenState) {
		t.Errorf("expected wrapped ErrOpenState, got %v", err)
	}
	if got := testutil.ToFloat64(rejected) - before; got != 1 {
		t.Errorf("rejected counter delta = %v, want 1", got)
	}
}

func TestCircuitBreaker_HalfOpenRecovers(t *testing.T) {
	cb := New(testConfig("test-half-open"))
	fail(cb, errors.New("connection refused"), 3)
	if !cb.IsOpen() {
		t.Fatalf("circuit should be open, got %v", cb.State())
	}

	time.Sleep(150 * time.Millisecond)

	if _, err := cb.Execute(func() (any, error) { return "ok", nil }); err != nil {
		t.Errorf("expected probe to run in half-open state, got %v", err)
	}
	if cb.State() != gobreaker.StateClosed {
		t.Errorf("expected closed after a successful probe, got %v", cb.State())
	}
}

func TestCircuitBreaker_MinRequests(t *testing.T) {
	cfg := testConfig("test-min")
	cfg.MinRequests = 10
	cb := New(cfg)

	fail(cb, errors.New("connection refused"), 4)

	if cb.State() != gobreaker.StateClosed {
		t.Errorf("expected state=Closed (below MinRequests), got %v", cb.State())
	}
}

func TestCircuitBreaker_ApplicationErrorsDoNotTrip(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"canceled request", context.Canceled},
		{"no rows", fmt.Errorf("get article: %w", sql.ErrNoRows)},
		{"unique violation", &pgconn.PgError{Code: "23505"}},
		{"foreign key violation", &pgconn.PgError{Code: "23503"}},
		{"invalid text", &pgconn.PgError{Code: "22P02"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cb := New(testConfig("test-app-" + tt.name))
			fail(cb, tt.err, 5)
			if cb.IsOpen() {
				t.Errorf("%v should not trip the breaker", tt.err)
			}
		})
	}
}

func TestIsFault(t *testing.T) {
	tests := []struct {
		name  string
		err   error
		fault bool
	}{
		{"nil", nil, false},
		{"canceled", context.Canceled, false},
		{"deadline", context.DeadlineExceeded, true},
		{"no rows", sql.ErrNoRows, false},
		{"conn done", sql.ErrConnDone, true},
		{"server starting", &pgconn.PgError{Code: "57P03"}, true},
		{"too many connections", &pgconn.PgError{Code: "53300"}, true},
		{"not null violation", &pgconn.PgError{Code: "23502"}, false},
		{"plain error", errors.New("broken pipe"), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsFault(tt.err); got != tt.fault {
				t.Errorf("IsFault(%v) = %v, want %v", tt.err, got, tt.fault)
			}
		})
	}
}
