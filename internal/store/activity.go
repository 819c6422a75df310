package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/garageops/toolledger/internal/model"
)

// appendActivity writes one audit-trail row inside the caller's transaction.
// Every mutating workflow appends exactly one entry, so the trail and the
// state change commit or roll back together.
func appendActivity(ctx context.Context, tx *sql.Tx, entryType string, toolID int64, ticketID *int64, ticketNumber, actor, message string) error {
	var number any
	if ticketNumber != "" {
		number = ticketNumber
	}
	_, err := tx.ExecContext(ctx,
		`INSERT INTO activity_log (type, tool_id, ticket_id, ticket_number, actor, message)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		entryType, toolID, ticketID, number, actor, message,
	)
	if err != nil {
		return fmt.Errorf("appending activity log: %w", err)
	}
	return nil
}

// RecentActivity returns the last limit audit-trail entries, newest first.
func RecentActivity(ctx context.Context, db *sql.DB, limit int) ([]model.ActivityEntry, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := db.QueryContext(ctx,
		`SELECT id, type, tool_id, ticket_id, ticket_number, actor, message, occurred_at
		 FROM activity_log
		 ORDER BY occurred_at DESC, id DESC
		 LIMIT ?`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("listing recent activity: %w", err)
	}
	defer rows.Close()

	var entries []model.ActivityEntry
	for rows.Next() {
		var e model.ActivityEntry
		var ticketNumber sql.NullString
		if err := rows.Scan(&e.ID, &e.Type, &e.ToolID, &e.TicketID, &ticketNumber, &e.Actor, &e.Message, &e.OccurredAt); err != nil {
			return nil, fmt.Errorf("scanning activity entry: %w", err)
		}
		e.TicketNumber = ticketNumber.String
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
