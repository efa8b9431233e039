package retry

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"syscall"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	_ "modernc.org/sqlite"
)

func fastConfig(attempts int) Config {
	return Config{
		MaxAttempts:    attempts,
		InitialDelay:   5 * time.Millisecond,
		MaxDelay:       20 * time.Millisecond,
		Multiplier:     2.0,
		JitterFraction: 0.1,
	}
}

func TestWithBackoff_Success(t *testing.T) {
	attempts := 0
	err := WithBackoff(context.Background(), fastConfig(3), func() error {
		attempts++
		return nil
	})

	if err != nil {
		t.Errorf("expected no error, got %v", err)
	}
	if attempts != 1 {
		t.Errorf("expected 1 attempt, got %d", attempts)
	}
}

func TestWithBackoff_SuccessAfterRetry(t *testing.T) {
	attempts := 0
	err := WithBackoff(context.Background(), fastConfig(3), func() error {
		attempts++
		if attempts < 3 {
			return fmt.Errorf("dial: %w", syscall.ECONNREFUSED)
		}
		return nil
	})

	if err != nil {
		t.Errorf("expected no error, got %v", err)
	}
	if attempts != 3 {
		t.Errorf("expected 3 attempts, got %d", attempts)
	}
}

func TestWithBackoff_MaxAttemptsExceeded(t *testing.T) {
	attempts := 0
	err := WithBackoff(context.Background(), fastConfig(3), func() error {
		attempts++
		return syscall.ECONNRESET
	})

	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if attempts != 3 {
		t.Errorf("expected 3 attempts, got %d", attempts)
	}
	if !errors.Is(err, syscall.ECONNRESET) {
		t.Errorf("expected wrapped error to contain original error, got %v", err)
	}
}

func TestWithBackoff_NonRetryableError(t *testing.T) {
	attempts := 0
	testErr := errors.New("password authentication failed")
	err := WithBackoff(context.Background(), fastConfig(3), func() error {
		attempts++
		return testErr
	})

	if attempts != 1 {
		t.Errorf("expected 1 attempt (non-retryable), got %d", attempts)
	}
	if err != testErr {
		t.Errorf("expected same error, got %v", err)
	}
}

func TestWithBackoff_ContextCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	attempts := 0
	err := WithBackoff(ctx, fastConfig(5), func() error {
		attempts++
		if attempts == 2 {
			cancel()
		}
		return syscall.ETIMEDOUT
	})

	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled error, got %v", err)
	}
	if attempts != 2 {
		t.Errorf("expected 2 attempts, got %d", attempts)
	}
}

func TestWithBackoff_CustomRetryable(t *testing.T) {
	errBusy := errors.New("busy")
	cfg := fastConfig(4)
	cfg.Retryable = func(err error) bool { return errors.Is(err, errBusy) }

	attempts := 0
	err := WithBackoff(context.Background(), cfg, func() error {
		attempts++
		return errBusy
	})

	if !errors.Is(err, errBusy) {
		t.Errorf("expected busy error, got %v", err)
	}
	if attempts != 4 {
		t.Errorf("expected 4 attempts, got %d", attempts)
	}
}

/* ───────── classification ───────── */

type timeoutErr struct{}

func (timeoutErr) Error() string   { return "i/o timeout" }
func (timeoutErr) Timeout() bool   { return true }
func (timeoutErr) Temporary() bool { return true }

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		retryable bool
	}{
		{name: "nil error", err: nil, retryable: false},
		{name: "context canceled", err: context.Canceled, retryable: false},
		{name: "context deadline exceeded", err: context.DeadlineExceeded, retryable: false},
		{name: "net timeout", err: timeoutErr{}, retryable: true},
		{name: "ECONNREFUSED", err: syscall.ECONNREFUSED, retryable: true},
		{name: "wrapped ECONNRESET", err: fmt.Errorf("ping: %w", syscall.ECONNRESET), retryable: true},
		{name: "ETIMEDOUT", err: syscall.ETIMEDOUT, retryable: true},
		{name: "ENETUNREACH", err: syscall.ENETUNREACH, retryable: true},
		{name: "postgres starting up", err: &pgconn.PgError{Code: "57P03"}, retryable: true},
		{name: "postgres deadlock", err: fmt.Errorf("insert comment: %w", &pgconn.PgError{Code: "40P01"}), retryable: true},
		{name: "postgres bad password", err: &pgconn.PgError{Code: "28P01"}, retryable: false},
		{name: "postgres unique violation", err: &pgconn.PgError{Code: "23505"}, retryable: false},
		{name: "generic error", err: errors.New("some error"), retryable: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsRetryable(tt.err); got != tt.retryable {
				t.Errorf("IsRetryable() = %v, want %v", got, tt.retryable)
			}
		})
	}
}

func TestIsRetryable_SQLiteConstraintIsPermanent(t *testing.T) {
	db, err := sql.Open("sqlite", "file::memory:")
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(`CREATE TABLE users (username TEXT UNIQUE)`); err != nil {
		t.Fatal(err)
	}
	if _, err := db.Exec(`INSERT INTO users VALUES ('alice')`); err != nil {
		t.Fatal(err)
	}
	_, err = db.Exec(`INSERT INTO users VALUES ('alice')`)
	if err == nil {
		t.Fatal("expected unique constraint error")
	}
	if IsRetryable(err) {
		t.Errorf("constraint violation should not be retried: %v", err)
	}
}

/* ───────── schedule ───────── */

func TestConfig_Backoff(t *testing.T) {
	cfg := Config{InitialDelay: 100 * time.Millisecond, MaxDelay: time.Second, Multiplier: 2}

	want := []time.Duration{
		100 * time.Millisecond,
		200 * time.Millisecond,
		400 * time.Millisecond,
		800 * time.Millisecond,
		time.Second,
		time.Second,
	}
	for i, w := range want {
		if got := cfg.Backoff(i + 1); got != w {
			t.Errorf("Backoff(%d) = %v, want %v", i+1, got, w)
		}
	}
}

func TestDBConfig(t *testing.T) {
	cfg := DBConfig()

	if cfg.MaxAttempts != 5 {
		t.Errorf("expected MaxAttempts=5, got %d", cfg.MaxAttempts)
	}
	if cfg.InitialDelay != 200*time.Millisecond {
		t.Errorf("expected InitialDelay=200ms, got %v", cfg.InitialDelay)
	}
	if cfg.Backoff(cfg.MaxAttempts) > cfg.MaxDelay {
		t.Errorf("last delay %v exceeds MaxDelay", cfg.Backoff(cfg.MaxAttempts))
	}
}

func TestAddJitter(t *testing.T) {
	duration := 100 * time.Millisecond

	results := make(map[time.Duration]bool)
	for i := 0; i < 20; i++ {
		result := addJitter(duration, 0.2)
		maxDuration := time.Duration(float64(duration) * 1.2)
		if result < duration || result > maxDuration {
			t.Errorf("expected result between %v and %v, got %v", duration, maxDuration, result)
		}
		results[result] = true
	}

	if len(results) < 2 {
		t.Error("expected jitter to produce varied results")
	}
	if result := addJitter(duration, 0.0); result != duration {
		t.Errorf("expected no jitter with fraction=0, got %v", result)
	}
}
