package db

import (
	"database/sql"
	"fmt"
)

// schema is the full ledger schema.
const schema = `
CREATE TABLE IF NOT EXISTS tools (
    id                 INTEGER PRIMARY KEY,
    tool_code          TEXT NOT NULL UNIQUE,
    name               TEXT NOT NULL,
    brand              TEXT,
    category           TEXT,
    quantity_available INTEGER NOT NULL DEFAULT 0 CHECK (quantity_available >= 0),
    min_stock          INTEGER NOT NULL DEFAULT 0 CHECK (min_stock >= 0),
    condition          TEXT NOT NULL DEFAULT 'good' CHECK (condition IN ('good', 'damaged')),
    status             TEXT NOT NULL DEFAULT 'available'
                       CHECK (status IN ('available', 'low_stock', 'out_of_stock', 'damaged')),
    notes              TEXT,
    total_acquired     INTEGER NOT NULL DEFAULT 0,
    created_at         DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at         DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS tickets (
    id            INTEGER PRIMARY KEY,
    ticket_number TEXT NOT NULL UNIQUE,
    created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS assignments (
    id            INTEGER PRIMARY KEY,
    tool_id       INTEGER NOT NULL REFERENCES tools(id),
    ticket_id     INTEGER NOT NULL REFERENCES tickets(id),
    ticket_number TEXT NOT NULL,
    quantity      INTEGER NOT NULL CHECK (quantity > 0),
    assigned_by   TEXT NOT NULL,
    status        TEXT NOT NULL DEFAULT 'in_use' CHECK (status IN ('in_use', 'returned')),
    assigned_at   DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    returned_at   DATETIME
);

CREATE INDEX IF NOT EXISTS idx_assignments_tool_status
    ON assignments(tool_id, status);

CREATE TABLE IF NOT EXISTS damage_reports (
    id          INTEGER PRIMARY KEY,
    tool_id     INTEGER NOT NULL REFERENCES tools(id),
    reported_by TEXT NOT NULL,
    quantity    INTEGER NOT NULL CHECK (quantity > 0),
    notes       TEXT,
    reported_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS activity_log (
    id            INTEGER PRIMARY KEY,
    type          TEXT NOT NULL CHECK (type IN ('assignment', 'return', 'check_in', 'damage', 'adjustment')),
    tool_id       INTEGER NOT NULL REFERENCES tools(id),
    ticket_id     INTEGER,
    ticket_number TEXT,
    actor         TEXT NOT NULL,
    message       TEXT NOT NULL,
    occurred_at   DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS idempotency_keys (
    key        TEXT PRIMARY KEY,
    created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`

// EnsureSchema creates all tables and indexes if they don't already exist.
func EnsureSchema(db *sql.DB) error {
	_, err := db.Exec(schema)
	if err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}
	return nil
}
