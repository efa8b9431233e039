package db

import (
	"context"
	"database/sql"
)

// Querier is the subset of *sql.DB used by the repositories.
// *sql.DB, *sql.Tx and circuitbreaker.DBCircuitBreaker all satisfy it.
type Querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}
