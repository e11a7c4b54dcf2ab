package db

import (
	"database/sql"
	"fmt"
	"strings"
)

// Migrate runs all schema migrations. Every statement is safe to re-run.
func Migrate(db *sql.DB) error {
	for i, stmt := range migrations {
		if _, err := db.Exec(stmt); err != nil {
			// Columns added by ALTER TABLE already exist in the current
			// CREATE TABLE, so re-runs report a duplicate column.
			if strings.Contains(err.Error(), "duplicate column name") {
				continue
			}
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}
	if err := migrateNormalizeWorkDates(db); err != nil {
		return fmt.Errorf("normalizing work dates: %w", err)
	}
	return nil
}

// migrateNormalizeWorkDates strips time components that older imports
// stored in work_date ("2024-05-01T00:00:00" becomes "2024-05-01").
func migrateNormalizeWorkDates(db *sql.DB) error {
	_, err := db.Exec(`UPDATE work_reports SET work_date = substr(work_date, 1, 10) WHERE length(work_date) > 10`)
	return err
}

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id            TEXT PRIMARY KEY,
		username      TEXT NOT NULL UNIQUE,
		name          TEXT NOT NULL DEFAULT '',
		email         TEXT NOT NULL DEFAULT '',
		password_hash TEXT NOT NULL,
		created_at    TEXT NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS work_reports (
		id           INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id      TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		work_date    TEXT NOT NULL,
		client       TEXT NOT NULL DEFAULT '',
		project_name TEXT NOT NULL DEFAULT '',
		system_name  TEXT NOT NULL DEFAULT '',
		pj_code      TEXT NOT NULL DEFAULT '',
		work_type    TEXT NOT NULL DEFAULT '',
		work_hours   REAL NOT NULL DEFAULT 0 CHECK(work_hours >= 0),
		out          INTEGER NOT NULL DEFAULT 0,
		location     TEXT NOT NULL DEFAULT '',
		backup       INTEGER NOT NULL DEFAULT 0,
		co_workers   TEXT NOT NULL DEFAULT '',
		content      TEXT NOT NULL DEFAULT '',
		product      TEXT NOT NULL DEFAULT '',
		created_at   TEXT NOT NULL,
		updated_at   TEXT NOT NULL
	)`,

	`CREATE INDEX IF NOT EXISTS idx_work_reports_user_date ON work_reports(user_id, work_date)`,

	// Added after the first release.
	`ALTER TABLE work_reports ADD COLUMN co_workers TEXT NOT NULL DEFAULT ''`,
	`ALTER TABLE work_reports ADD COLUMN product TEXT NOT NULL DEFAULT ''`,
}
