// Package ticket resolves repair-ticket identity for the ledger. The ticket
// system itself lives outside the ledger; this package is the seam through
// which the ledger sees it.
package ticket

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// ErrNotFound is returned when a ticket reference does not resolve.
var ErrNotFound = errors.New("ticket not found")

// Ticket is a resolved ticket identity.
type Ticket struct {
	ID     int64  `json:"id"`
	Number string `json:"number"`
}

// Resolver resolves a ticket reference (internal id or human-facing number)
// to a full identity.
type Resolver interface {
	ResolveID(ctx context.Context, id int64) (Ticket, error)
	ResolveNumber(ctx context.Context, number string) (Ticket, error)
}

// SQLResolver resolves tickets against the ledger's replica of the ticket
// table.
type SQLResolver struct {
	DB *sql.DB
}

// ResolveID implements Resolver.
func (r *SQLResolver) ResolveID(ctx context.Context, id int64) (Ticket, error) {
	var t Ticket
	err := r.DB.QueryRowContext(ctx,
		`SELECT id, ticket_number FROM tickets WHERE id = ?`, id,
	).Scan(&t.ID, &t.Number)
	if err == sql.ErrNoRows {
		return Ticket{}, ErrNotFound
	}
	if err != nil {
		return Ticket{}, fmt.Errorf("resolving ticket %d: %w", id, err)
	}
	return t, nil
}

// ResolveNumber implements Resolver.
func (r *SQLResolver) ResolveNumber(ctx context.Context, number string) (Ticket, error) {
	var t Ticket
	err := r.DB.QueryRowContext(ctx,
		`SELECT id, ticket_number FROM tickets WHERE ticket_number = ?`, number,
	).Scan(&t.ID, &t.Number)
	if err == sql.ErrNoRows {
		return Ticket{}, ErrNotFound
	}
	if err != nil {
		return Ticket{}, fmt.Errorf("resolving ticket %q: %w", number, err)
	}
	return t, nil
}

// Register records a ticket identity in the ledger's replica. The ticket
// service calls this when a ticket is opened.
func Register(ctx context.Context, db *sql.DB, number string) (Ticket, error) {
	result, err := db.ExecContext(ctx,
		`INSERT INTO tickets (ticket_number) VALUES (?)`, number,
	)
	if err != nil {
		return Ticket{}, fmt.Errorf("registering ticket: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return Ticket{}, fmt.Errorf("getting ticket id: %w", err)
	}
	return Ticket{ID: id, Number: number}, nil
}
