package db

import (
	"database/sql"
	"fmt"
)

// migrations is a list of SQL statements applied in order after schema creation.
// Each migration must be idempotent. Append new migrations at the end.
var migrations = []string{
	// Migration 1: index the activity log by time for the recent-activity feed.
	`CREATE INDEX IF NOT EXISTS idx_activity_log_occurred_at
	     ON activity_log(occurred_at DESC)`,
	// Migration 2: index returned assignments for the returned-today report.
	`CREATE INDEX IF NOT EXISTS idx_assignments_returned_at
	     ON assignments(returned_at) WHERE returned_at IS NOT NULL`,
}

// Migrate runs the database schema migrations.
func Migrate(db *sql.DB) error {
	_, err := db.Exec(schema)
	if err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}

	for i, m := range migrations {
		if _, err := db.Exec(m); err != nil {
			return fmt.Errorf("running migration %d: %w", i+1, err)
		}
	}

	return nil
}
