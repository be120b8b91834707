// Package migrations applies the local schema (config, workers, jobs and
// the schema_migrations tracking table) to a DuckDB database in version
// order, grounded on the teacher's migrations.Run(ctx, db) entrypoint
// (internal/store/migrations/migrations_test.go exercises exactly this
// signature) and on the table shapes confirmed against
// app/services/database.py from the Python original.
package migrations

import (
	"context"
	"database/sql"
	"fmt"
)

type migration struct {
	version int
	sql     string
}

var migrationsList = []migration{
	{
		version: 1,
		sql: `
			CREATE TABLE IF NOT EXISTS config (
				key   TEXT PRIMARY KEY,
				value TEXT NOT NULL
			);

			CREATE TABLE IF NOT EXISTS workers (
				id          TEXT PRIMARY KEY,
				name        TEXT NOT NULL,
				url         TEXT NOT NULL,
				backend     TEXT NOT NULL DEFAULT 'pipeline',
				enabled     BOOLEAN NOT NULL DEFAULT true,
				total_jobs  INTEGER NOT NULL DEFAULT 0,
				failed_jobs INTEGER NOT NULL DEFAULT 0,
				created_at  TIMESTAMP NOT NULL
			);

			CREATE TABLE IF NOT EXISTS jobs (
				id           TEXT PRIMARY KEY,
				status       TEXT NOT NULL DEFAULT 'pending',
				priority     INTEGER NOT NULL DEFAULT 5,
				payload      TEXT,
				file_name    TEXT,
				created_at   TIMESTAMP NOT NULL,
				started_at   TIMESTAMP,
				completed_at TIMESTAMP,
				worker_id    TEXT,
				worker_name  TEXT,
				error        TEXT,
				retry_count  INTEGER NOT NULL DEFAULT 0,
				result       TEXT,
				duration     DOUBLE
			);

			CREATE INDEX IF NOT EXISTS idx_jobs_status ON jobs(status);
			CREATE INDEX IF NOT EXISTS idx_jobs_created_at ON jobs(created_at);
		`,
	},
}

// Run applies every migration in migrationsList not yet recorded in
// schema_migrations, each inside its own transaction. Safe to call
// repeatedly: an already-applied version is skipped.
func Run(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version    INTEGER PRIMARY KEY,
			applied_at TIMESTAMP NOT NULL DEFAULT now()
		)
	`); err != nil {
		return fmt.Errorf("create schema_migrations: %w", err)
	}

	applied := make(map[int]bool)
	rows, err := db.QueryContext(ctx, `SELECT version FROM schema_migrations`)
	if err != nil {
		return fmt.Errorf("read schema_migrations: %w", err)
	}
	for rows.Next() {
		var v int
		if err := rows.Scan(&v); err != nil {
			rows.Close()
			return fmt.Errorf("scan schema_migrations: %w", err)
		}
		applied[v] = true
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return err
	}
	rows.Close()

	for _, m := range migrationsList {
		if applied[m.version] {
			continue
		}
		tx, err := db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("begin migration %d: %w", m.version, err)
		}
		if _, err := tx.ExecContext(ctx, m.sql); err != nil {
			tx.Rollback()
			return fmt.Errorf("apply migration %d: %w", m.version, err)
		}
		if _, err := tx.ExecContext(ctx, `INSERT INTO schema_migrations (version) VALUES (?)`, m.version); err != nil {
			tx.Rollback()
			return fmt.Errorf("record migration %d: %w", m.version, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit migration %d: %w", m.version, err)
		}
	}
	return nil
}
