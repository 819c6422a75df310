package store

import (
	"context"
	"errors"
	"testing"

	"github.com/garageops/toolledger/internal/db"
	"github.com/garageops/toolledger/internal/model"
	"github.com/garageops/toolledger/internal/notify"
	"github.com/garageops/toolledger/internal/ticket"
)

func TestAssignTool(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	resolver := &ticket.SQLResolver{DB: database}

	tool := createTestTool(t, database, "Torque Wrench", 10, 3)
	tk := registerTestTicket(t, database, "TIC000001")

	assignment, events, err := AssignTool(ctx, database, resolver, tool.ID, tk.ID, "", 4, "mechanic")
	if err != nil {
		t.Fatalf("AssignTool: %v", err)
	}

	if assignment.Status != model.AssignmentInUse {
		t.Errorf("expected status in_use, got %s", assignment.Status)
	}
	if assignment.TicketNumber != "TIC000001" {
		t.Errorf("expected denormalized ticket number, got %s", assignment.TicketNumber)
	}

	updated, _ := GetTool(ctx, database, tool.ID)
	if updated.QuantityAvailable != 6 {
		t.Errorf("expected quantity 6, got %d", updated.QuantityAvailable)
	}
	if updated.Status != model.StatusAvailable {
		t.Errorf("expected status available, got %s", updated.Status)
	}

	if len(events) != 1 || events[0].Type != notify.EventToolAssigned {
		t.Errorf("expected a single tool_assigned event, got %v", events)
	}
}

func TestAssignToolByTicketNumber(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	resolver := &ticket.SQLResolver{DB: database}

	tool := createTestTool(t, database, "Torque Wrench", 10, 3)
	registerTestTicket(t, database, "TIC000007")

	assignment, _, err := AssignTool(ctx, database, resolver, tool.ID, 0, "TIC000007", 1, "mechanic")
	if err != nil {
		t.Fatalf("AssignTool by number: %v", err)
	}
	if assignment.TicketNumber != "TIC000007" {
		t.Errorf("expected ticket TIC000007, got %s", assignment.TicketNumber)
	}
}

func TestAssignToolUnknownTicket(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	resolver := &ticket.SQLResolver{DB: database}

	tool := createTestTool(t, database, "Torque Wrench", 10, 3)

	_, _, err := AssignTool(ctx, database, resolver, tool.ID, 99, "", 1, "mechanic")
	if !errors.Is(err, ticket.ErrNotFound) {
		t.Errorf("expected ticket.ErrNotFound, got %v", err)
	}
}

func TestAssignToolEmitsStockLow(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	resolver := &ticket.SQLResolver{DB: database}

	tool := createTestTool(t, database, "Torque Wrench", 10, 3)
	tk := registerTestTicket(t, database, "TIC000001")

	_, events, err := AssignTool(ctx, database, resolver, tool.ID, tk.ID, "", 8, "mechanic")
	if err != nil {
		t.Fatalf("AssignTool: %v", err)
	}

	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(events))
	}
	if events[0].Type != notify.EventToolAssigned || events[1].Type != notify.EventToolStockLow {
		t.Errorf("unexpected events: %s, %s", events[0].Type, events[1].Type)
	}
	if events[1].Quantity != 2 {
		t.Errorf("expected stock-low event with remaining quantity 2, got %d", events[1].Quantity)
	}

	updated, _ := GetTool(ctx, database, tool.ID)
	if updated.Status != model.StatusLowStock {
		t.Errorf("expected status low_stock, got %s", updated.Status)
	}
}

func TestAssignToolInsufficientStock(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	resolver := &ticket.SQLResolver{DB: database}

	tool := createTestTool(t, database, "Torque Wrench", 2, 1)
	tk := registerTestTicket(t, database, "TIC000001")

	_, _, err := AssignTool(ctx, database, resolver, tool.ID, tk.ID, "", 3, "mechanic")

	var insufficient *InsufficientStockError
	if !errors.As(err, &insufficient) {
		t.Fatalf("expected InsufficientStockError, got %v", err)
	}
	if insufficient.Available != 2 {
		t.Errorf("expected available 2 in error, got %d", insufficient.Available)
	}

	// State unchanged.
	updated, _ := GetTool(ctx, database, tool.ID)
	if updated.QuantityAvailable != 2 {
		t.Errorf("expected quantity unchanged at 2, got %d", updated.QuantityAvailable)
	}
	assignments, _ := ListAssignments(ctx, database, "", 0)
	if len(assignments) != 0 {
		t.Errorf("expected no assignments, got %d", len(assignments))
	}
}

func TestReturnAssignment(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	resolver := &ticket.SQLResolver{DB: database}

	tool := createTestTool(t, database, "Torque Wrench", 10, 3)
	tk := registerTestTicket(t, database, "TIC000001")

	assignment, _, _ := AssignTool(ctx, database, resolver, tool.ID, tk.ID, "", 8, "mechanic")

	returned, err := ReturnAssignment(ctx, database, assignment.ID, "mechanic")
	if err != nil {
		t.Fatalf("ReturnAssignment: %v", err)
	}
	if returned.Status != model.AssignmentReturned {
		t.Errorf("expected status returned, got %s", returned.Status)
	}
	if returned.ReturnedAt == nil {
		t.Error("expected returned_at to be set")
	}

	updated, _ := GetTool(ctx, database, tool.ID)
	if updated.QuantityAvailable != 10 {
		t.Errorf("expected quantity back to 10, got %d", updated.QuantityAvailable)
	}
	if updated.Status != model.StatusAvailable {
		t.Errorf("expected status available, got %s", updated.Status)
	}
}

func TestReturnAssignmentTwiceRejected(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	resolver := &ticket.SQLResolver{DB: database}

	tool := createTestTool(t, database, "Torque Wrench", 10, 3)
	tk := registerTestTicket(t, database, "TIC000001")

	assignment, _, _ := AssignTool(ctx, database, resolver, tool.ID, tk.ID, "", 4, "mechanic")

	if _, err := ReturnAssignment(ctx, database, assignment.ID, "mechanic"); err != nil {
		t.Fatalf("first return: %v", err)
	}

	_, err := ReturnAssignment(ctx, database, assignment.ID, "mechanic")
	if !errors.Is(err, ErrAlreadyReturned) {
		t.Fatalf("expected ErrAlreadyReturned, got %v", err)
	}

	// No double credit.
	updated, _ := GetTool(ctx, database, tool.ID)
	if updated.QuantityAvailable != 10 {
		t.Errorf("expected quantity 10 after repeat return, got %d", updated.QuantityAvailable)
	}
}

func TestReturnAssignmentNotFound(t *testing.T) {
	database := db.NewTestDB(t)

	_, err := ReturnAssignment(context.Background(), database, 42, "mechanic")
	if !errors.Is(err, ErrAssignmentNotFound) {
		t.Errorf("expected ErrAssignmentNotFound, got %v", err)
	}
}

func TestListAssignmentsFiltered(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	resolver := &ticket.SQLResolver{DB: database}

	tool := createTestTool(t, database, "Torque Wrench", 10, 3)
	first := registerTestTicket(t, database, "TIC000001")
	second := registerTestTicket(t, database, "TIC000002")

	a1, _, _ := AssignTool(ctx, database, resolver, tool.ID, first.ID, "", 2, "mechanic")
	AssignTool(ctx, database, resolver, tool.ID, second.ID, "", 3, "mechanic")
	ReturnAssignment(ctx, database, a1.ID, "mechanic")

	inUse, _ := ListAssignments(ctx, database, model.AssignmentInUse, 0)
	if len(inUse) != 1 || inUse[0].TicketNumber != "TIC000002" {
		t.Errorf("expected one in-use assignment for TIC000002, got %v", inUse)
	}

	returned, _ := ListAssignments(ctx, database, model.AssignmentReturned, 0)
	if len(returned) != 1 || returned[0].TicketNumber != "TIC000001" {
		t.Errorf("expected one returned assignment for TIC000001, got %v", returned)
	}

	byTicket, _ := ListAssignments(ctx, database, "", second.ID)
	if len(byTicket) != 1 {
		t.Errorf("expected 1 assignment for ticket filter, got %d", len(byTicket))
	}
}
