// Package db opens and migrates the relational store backing the blog.
// Postgres (via pgx) is the production driver; SQLite (modernc, pure Go) serves local
// development and integration tests.
package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"

	"blog/internal/resilience/retry"
)

// Supported driver names.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// ErrUnsupportedDriver is returned for driver names other than postgres and sqlite.
var ErrUnsupportedDriver = errors.New("unsupported database driver")

// ConnectionConfig holds database connection pool configuration.
type ConnectionConfig struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
}

// DefaultConnectionConfig returns the default connection pool configuration.
func DefaultConnectionConfig() ConnectionConfig {
	return ConnectionConfig{
		MaxOpenConns:    25,               // Maximum number of open connections
		MaxIdleConns:    10,               // Maximum number of idle connections
		ConnMaxLifetime: 1 * time.Hour,    // Maximum lifetime of a connection
		ConnMaxIdleTime: 30 * time.Minute, // Maximum idle time of a connection
	}
}

// Options selects the driver and connection target.
// DSN is a Postgres URL for DriverPostgres and a file path (or ":memory:") for DriverSQLite.
type Options struct {
	Driver string
	DSN    string
	Pool   ConnectionConfig
}

// Open creates and configures a new database connection pool and verifies it with a ping.
// The ping is retried with exponential backoff so the server survives a database that is
// still starting up.
func Open(ctx context.Context, opts Options) (*sql.DB, error) {
	var (
		database *sql.DB
		err      error
	)

	switch opts.Driver {
	case DriverPostgres:
		database, err = openPostgres(opts)
	case DriverSQLite:
		database, err = openSQLite(opts.DSN)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedDriver, opts.Driver)
	}
	if err != nil {
		return nil, err
	}

	pingErr := retry.WithBackoff(ctx, retry.DBConfig(), func() error {
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		return database.PingContext(pingCtx)
	})
	if pingErr != nil {
		_ = database.Close()
		return nil, fmt.Errorf("ping database: %w", pingErr)
	}

	slog.Info("database connection established successfully",
		slog.String("driver", opts.Driver))
	return database, nil
}

func openPostgres(opts Options) (*sql.DB, error) {
	if opts.DSN == "" {
		return nil, errors.New("DATABASE_URL not set")
	}

	database, err := sql.Open("pgx", opts.DSN)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}

	cfg := opts.Pool
	if cfg == (ConnectionConfig{}) {
		cfg = DefaultConnectionConfig()
	}
	database.SetMaxOpenConns(cfg.MaxOpenConns)
	database.SetMaxIdleConns(cfg.MaxIdleConns)
	database.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	database.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	slog.Info("database connection pool configured",
		slog.Int("max_open_conns", cfg.MaxOpenConns),
		slog.Int("max_idle_conns", cfg.MaxIdleConns),
		slog.Duration("conn_max_lifetime", cfg.ConnMaxLifetime),
		slog.Duration("conn_max_idle_time", cfg.ConnMaxIdleTime))

	return database, nil
}

// openSQLite opens a single-connection pool. SQLite serialises writers anyway, and a
// single long-lived connection keeps ":memory:" databases and per-connection pragmas alive.
func openSQLite(path string) (*sql.DB, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("sqlite path is required")
	}

	database, err := sql.Open("sqlite", SQLiteDSN(path))
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	database.SetMaxOpenConns(1)
	database.SetMaxIdleConns(1)
	database.SetConnMaxLifetime(0)
	database.SetConnMaxIdleTime(0)
	return database, nil
}

// SQLiteDSN builds a modernc DSN with foreign keys enforced.
func SQLiteDSN(path string) string {
	const pragmas = "_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
	if path == ":memory:" {
		return "file::memory:?" + pragmas
	}
	return "file:" + path + "?" + pragmas + "&_pragma=journal_mode(WAL)"
}
