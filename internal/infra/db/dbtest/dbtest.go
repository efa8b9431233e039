// Package dbtest opens migrated in-memory SQLite databases for tests.
package dbtest

import (
	"context"
	"database/sql"
	"testing"

	"blog/internal/infra/db"
)

// OpenSQLite returns a migrated in-memory database closed at test cleanup.
func OpenSQLite(t testing.TB) *sql.DB {
	t.Helper()

	database, err := db.Open(context.Background(), db.Options{Driver: db.DriverSQLite, DSN: ":memory:"})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = database.Close() })

	if err := db.Migrate(database, db.DriverSQLite); err != nil {
		t.Fatalf("migrate sqlite: %v", err)
	}
	return database
}
