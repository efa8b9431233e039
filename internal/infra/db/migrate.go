package db

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"slices"
	"strings"
	"time"
)

const migrationTable = "schema_migrations"

const (
	upMarker   = "-- +migrate Up"
	downMarker = "-- +migrate Down"
)

// migrations/<driver>/NNN_name.sql, one directory per supported driver.
//
//go:embed migrations
var migrations embed.FS

// Migrate applies the embedded migrations for driver.
func Migrate(database *sql.DB, driver string) error {
	if driver != DriverPostgres && driver != DriverSQLite {
		return fmt.Errorf("%w: %q", ErrUnsupportedDriver, driver)
	}
	return ApplyMigrations(database, driver, migrations, path.Join("migrations", driver))
}

// ApplyMigrations runs the Up section of every .sql file under root in lexical
// order and records each file in schema_migrations so it runs at most once.
// Each file is applied in its own transaction.
func ApplyMigrations(database *sql.DB, driver string, fsys fs.FS, root string) error {
	if database == nil {
		return errors.New("sql db is required")
	}

	files, err := migrationFiles(fsys, root)
	if err != nil {
		return err
	}

	ctx := context.Background()
	if _, err := database.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS `+migrationTable+` (
    name       TEXT PRIMARY KEY,
    applied_at BIGINT NOT NULL
)`); err != nil {
		return fmt.Errorf("ensure migration table: %w", err)
	}

	for _, file := range files {
		done, err := applied(ctx, database, driver, file)
		if err != nil {
			return fmt.Errorf("check migration %s: %w", file, err)
		}
		if done {
			continue
		}

		content, err := fs.ReadFile(fsys, path.Join(root, file))
		if err != nil {
			return fmt.Errorf("read migration %s: %w", file, err)
		}
		if err := applyOne(ctx, database, driver, file, ExtractUpMigration(string(content))); err != nil {
			return err
		}
	}
	return nil
}

func migrationFiles(fsys fs.FS, root string) ([]string, error) {
	entries, err := fs.ReadDir(fsys, root)
	if err != nil {
		return nil, fmt.Errorf("read migrations dir: %w", err)
	}
	var files []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".sql") {
			files = append(files, e.Name())
		}
	}
	slices.Sort(files)
	return files, nil
}

// applyOne records an empty Up section too, so it is not re-read on every boot.
func applyOne(ctx context.Context, database *sql.DB, driver, file, up string) error {
	tx, err := database.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin migration %s: %w", file, err)
	}
	defer func() { _ = tx.Rollback() }()

	if strings.TrimSpace(up) != "" {
		if _, err := tx.ExecContext(ctx, up); err != nil {
			return fmt.Errorf("exec migration %s: %w", file, err)
		}
	}
	insert := rebind(driver, "INSERT INTO "+migrationTable+" (name, applied_at) VALUES (?, ?)")
	if _, err := tx.ExecContext(ctx, insert, file, time.Now().UTC().UnixMilli()); err != nil {
		return fmt.Errorf("record migration %s: %w", file, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit migration %s: %w", file, err)
	}
	return nil
}

func applied(ctx context.Context, database *sql.DB, driver, name string) (bool, error) {
	var one int
	err := database.QueryRowContext(ctx,
		rebind(driver, "SELECT 1 FROM "+migrationTable+" WHERE name = ?"), name).Scan(&one)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return false, nil
	case err != nil:
		return false, err
	}
	return true, nil
}

// ExtractUpMigration returns the SQL between the Up and Down markers.
// Content without an Up marker is returned unchanged.
func ExtractUpMigration(content string) string {
	_, up, found := strings.Cut(content, upMarker)
	if !found {
		return content
	}
	up, _, _ = strings.Cut(up, downMarker)
	return up
}

// rebind turns ? placeholders into $n for Postgres.
func rebind(driver, query string) string {
	if driver != DriverPostgres {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			fmt.Fprintf(&b, "$%d", n)
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
