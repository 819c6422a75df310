package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/garageops/toolledger/internal/model"
	"github.com/garageops/toolledger/internal/notify"
	"github.com/garageops/toolledger/internal/ticket"
)

const assignmentColumns = `a.id, a.tool_id, a.ticket_id, a.ticket_number, a.quantity,
	a.assigned_by, a.status, a.assigned_at, a.returned_at, t.name, t.tool_code`

// AssignTool checks out quantity units of a tool to a repair ticket. The
// ticket may be referenced by internal id or by number; either resolves
// through the ticket service before any transaction starts.
//
// The quantity decrement, the assignment row and the audit entry commit as
// one unit. Returned events are for the caller to publish after commit.
func AssignTool(ctx context.Context, db *sql.DB, resolver ticket.Resolver, toolID, ticketID int64, ticketNumber string, quantity int, actor string) (*model.Assignment, []notify.Event, error) {
	if quantity <= 0 {
		return nil, nil, ErrInvalidQuantity
	}

	var tk ticket.Ticket
	var err error
	if ticketID > 0 {
		tk, err = resolver.ResolveID(ctx, ticketID)
	} else {
		tk, err = resolver.ResolveNumber(ctx, ticketNumber)
	}
	if err != nil {
		return nil, nil, err
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	tool, err := getToolForUpdate(ctx, tx, toolID)
	if err != nil {
		return nil, nil, err
	}

	if tool.QuantityAvailable < quantity {
		return nil, nil, &InsufficientStockError{Available: tool.QuantityAvailable, Requested: quantity}
	}

	newQty := tool.QuantityAvailable - quantity
	status := model.DeriveStatus(newQty, tool.MinStock, tool.Condition, model.DefaultDamagePolicy)

	_, err = tx.ExecContext(ctx,
		`UPDATE tools SET quantity_available = ?, status = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		newQty, status, tool.ID,
	)
	if err != nil {
		return nil, nil, fmt.Errorf("updating tool quantity: %w", err)
	}

	result, err := tx.ExecContext(ctx,
		`INSERT INTO assignments (tool_id, ticket_id, ticket_number, quantity, assigned_by)
		 VALUES (?, ?, ?, ?, ?)`,
		tool.ID, tk.ID, tk.Number, quantity, actor,
	)
	if err != nil {
		return nil, nil, fmt.Errorf("recording assignment: %w", err)
	}

	message := fmt.Sprintf("assigned %d x %s to ticket %s", quantity, tool.Name, tk.Number)
	if err := appendActivity(ctx, tx, model.ActivityAssignment, tool.ID, &tk.ID, tk.Number, actor, message); err != nil {
		return nil, nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, nil, fmt.Errorf("committing assignment: %w", err)
	}

	assignmentID, _ := result.LastInsertId()
	assignment, err := GetAssignment(ctx, db, assignmentID)
	if err != nil {
		return nil, nil, err
	}

	event := notify.NewEvent(notify.EventToolAssigned, tool.ID, tool.ToolCode, quantity)
	event.TicketNumber = tk.Number
	events := []notify.Event{event}
	if newQty <= tool.MinStock {
		low := notify.NewEvent(notify.EventToolStockLow, tool.ID, tool.ToolCode, newQty)
		events = append(events, low)
	}

	return assignment, events, nil
}

// ReturnAssignment closes an assignment and credits its quantity back to the
// tool. Returning an already-returned assignment fails with ErrAlreadyReturned
// and changes nothing, so client retries cannot double-credit stock.
func ReturnAssignment(ctx context.Context, db *sql.DB, assignmentID int64, actor string) (*model.Assignment, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	var toolID int64
	var quantity int
	var status, ticketNumber string
	var ticketID int64
	err = tx.QueryRowContext(ctx,
		`SELECT tool_id, quantity, status, ticket_id, ticket_number FROM assignments WHERE id = ?`,
		assignmentID,
	).Scan(&toolID, &quantity, &status, &ticketID, &ticketNumber)
	if err == sql.ErrNoRows {
		return nil, ErrAssignmentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting assignment: %w", err)
	}

	if status != model.AssignmentInUse {
		return nil, ErrAlreadyReturned
	}

	tool, err := getToolForUpdate(ctx, tx, toolID)
	if err != nil {
		return nil, err
	}

	newQty := tool.QuantityAvailable + quantity
	newStatus := model.DeriveStatus(newQty, tool.MinStock, tool.Condition, model.DefaultDamagePolicy)

	_, err = tx.ExecContext(ctx,
		`UPDATE tools SET quantity_available = ?, status = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		newQty, newStatus, tool.ID,
	)
	if err != nil {
		return nil, fmt.Errorf("updating tool quantity: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE assignments SET status = ?, returned_at = CURRENT_TIMESTAMP WHERE id = ?`,
		model.AssignmentReturned, assignmentID,
	)
	if err != nil {
		return nil, fmt.Errorf("closing assignment: %w", err)
	}

	message := fmt.Sprintf("returned %d x %s from ticket %s", quantity, tool.Name, ticketNumber)
	if err := appendActivity(ctx, tx, model.ActivityReturn, tool.ID, &ticketID, ticketNumber, actor, message); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing return: %w", err)
	}

	return GetAssignment(ctx, db, assignmentID)
}

// GetAssignment returns one assignment by ID, or ErrAssignmentNotFound.
func GetAssignment(ctx context.Context, db *sql.DB, id int64) (*model.Assignment, error) {
	a := &model.Assignment{}
	err := db.QueryRowContext(ctx,
		`SELECT `+assignmentColumns+`
		 FROM assignments a
		 JOIN tools t ON t.id = a.tool_id
		 WHERE a.id = ?`, id,
	).Scan(&a.ID, &a.ToolID, &a.TicketID, &a.TicketNumber, &a.Quantity,
		&a.AssignedBy, &a.Status, &a.AssignedAt, &a.ReturnedAt, &a.ToolName, &a.ToolCode)
	if err == sql.ErrNoRows {
		return nil, ErrAssignmentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting assignment: %w", err)
	}
	return a, nil
}

// ListAssignments returns assignments filtered by status and, optionally, by
// ticket.
func ListAssignments(ctx context.Context, db *sql.DB, status string, ticketID int64) ([]model.Assignment, error) {
	query := `SELECT ` + assignmentColumns + `
	          FROM assignments a
	          JOIN tools t ON t.id = a.tool_id
	          WHERE 1=1`
	var args []any

	if status != "" {
		query += ` AND a.status = ?`
		args = append(args, status)
	}
	if ticketID > 0 {
		query += ` AND a.ticket_id = ?`
		args = append(args, ticketID)
	}

	query += ` ORDER BY a.assigned_at DESC, a.id DESC`

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing assignments: %w", err)
	}
	defer rows.Close()

	var assignments []model.Assignment
	for rows.Next() {
		var a model.Assignment
		if err := rows.Scan(&a.ID, &a.ToolID, &a.TicketID, &a.TicketNumber, &a.Quantity,
			&a.AssignedBy, &a.Status, &a.AssignedAt, &a.ReturnedAt, &a.ToolName, &a.ToolCode); err != nil {
			return nil, fmt.Errorf("scanning assignment: %w", err)
		}
		assignments = append(assignments, a)
	}
	return assignments, rows.Err()
}
