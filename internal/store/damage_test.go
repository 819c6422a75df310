package store

import (
	"context"
	"errors"
	"testing"

	"github.com/garageops/toolledger/internal/db"
	"github.com/garageops/toolledger/internal/model"
	"github.com/garageops/toolledger/internal/notify"
)

func TestReportDamage(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	tool := createTestTool(t, database, "Torque Wrench", 10, 3)

	updated, events, err := ReportDamage(ctx, database, ReportDamageParams{
		ToolID: tool.ID, Quantity: 4, Notes: "cracked casing", Actor: "mechanic",
	})
	if err != nil {
		t.Fatalf("ReportDamage: %v", err)
	}

	if updated.QuantityAvailable != 6 {
		t.Errorf("expected quantity 6, got %d", updated.QuantityAvailable)
	}
	if updated.Condition != model.ConditionDamaged {
		t.Errorf("expected condition damaged, got %s", updated.Condition)
	}
	// 6 > minStock 3, but the damage override still applies.
	if updated.Status != model.StatusDamaged {
		t.Errorf("expected status damaged, got %s", updated.Status)
	}

	if len(events) != 1 || events[0].Type != notify.EventToolDamaged {
		t.Errorf("expected a tool_damaged event, got %v", events)
	}

	reports, _ := ListDamageReports(ctx, database, tool.ID)
	if len(reports) != 1 || reports[0].Notes != "cracked casing" {
		t.Errorf("expected one damage report with notes, got %v", reports)
	}
}

func TestReportDamageInsufficientStock(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	tool := createTestTool(t, database, "Torque Wrench", 3, 1)

	_, _, err := ReportDamage(ctx, database, ReportDamageParams{
		ToolID: tool.ID, Quantity: 5, Notes: "all broken", Actor: "mechanic",
	})

	var insufficient *InsufficientStockError
	if !errors.As(err, &insufficient) {
		t.Fatalf("expected InsufficientStockError, got %v", err)
	}

	updated, _ := GetTool(ctx, database, tool.ID)
	if updated.QuantityAvailable != 3 || updated.Condition != model.ConditionGood {
		t.Errorf("expected state unchanged, got qty %d condition %s", updated.QuantityAvailable, updated.Condition)
	}
	reports, _ := ListDamageReports(ctx, database, tool.ID)
	if len(reports) != 0 {
		t.Errorf("expected no damage reports, got %d", len(reports))
	}
}

func TestCheckInDoesNotClearDamage(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	tool := createTestTool(t, database, "Torque Wrench", 10, 3)

	if _, _, err := ReportDamage(ctx, database, ReportDamageParams{
		ToolID: tool.ID, Quantity: 4, Notes: "cracked casing", Actor: "mechanic",
	}); err != nil {
		t.Fatalf("ReportDamage: %v", err)
	}

	// Restocking does not clear the damaged condition on its own.
	updated, err := CheckInTool(ctx, database, CheckInParams{
		ToolID: tool.ID, Quantity: 5, Actor: "storekeeper",
	})
	if err != nil {
		t.Fatalf("CheckInTool: %v", err)
	}
	if updated.QuantityAvailable != 11 {
		t.Errorf("expected quantity 11, got %d", updated.QuantityAvailable)
	}
	if updated.Status != model.StatusDamaged {
		t.Errorf("expected status to stay damaged, got %s", updated.Status)
	}
}

func TestCheckInWithConditionResetsDamage(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	tool := createTestTool(t, database, "Torque Wrench", 10, 3)

	ReportDamage(ctx, database, ReportDamageParams{
		ToolID: tool.ID, Quantity: 4, Notes: "cracked casing", Actor: "mechanic",
	})

	// An explicit condition on check-in is the operator's way out of the
	// damaged state.
	updated, err := CheckInTool(ctx, database, CheckInParams{
		ToolID: tool.ID, Quantity: 4, Condition: model.ConditionGood,
		Notes: "repaired by supplier", Actor: "storekeeper",
	})
	if err != nil {
		t.Fatalf("CheckInTool: %v", err)
	}
	if updated.Condition != model.ConditionGood {
		t.Errorf("expected condition good, got %s", updated.Condition)
	}
	if updated.Status != model.StatusAvailable {
		t.Errorf("expected status available, got %s", updated.Status)
	}
	if updated.Notes != "repaired by supplier" {
		t.Errorf("expected notes appended, got %q", updated.Notes)
	}
}

func TestCheckInRaisesBaseline(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	tool := createTestTool(t, database, "Torque Wrench", 10, 3)

	updated, err := CheckInTool(ctx, database, CheckInParams{
		ToolID: tool.ID, Quantity: 5, Actor: "storekeeper",
	})
	if err != nil {
		t.Fatalf("CheckInTool: %v", err)
	}
	if updated.TotalAcquired != 15 {
		t.Errorf("expected total acquired 15, got %d", updated.TotalAcquired)
	}
}

func TestIdempotencyKeyRejectsReplay(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	tool := createTestTool(t, database, "Torque Wrench", 10, 3)

	params := CheckInParams{
		ToolID: tool.ID, Quantity: 5, Actor: "storekeeper",
		IdempotencyKey: "c2b7a9e4-check-in",
	}
	if _, err := CheckInTool(ctx, database, params); err != nil {
		t.Fatalf("first check-in: %v", err)
	}

	_, err := CheckInTool(ctx, database, params)
	if !errors.Is(err, ErrDuplicateRequest) {
		t.Fatalf("expected ErrDuplicateRequest, got %v", err)
	}

	// No double count.
	updated, _ := GetTool(ctx, database, tool.ID)
	if updated.QuantityAvailable != 15 {
		t.Errorf("expected quantity 15 after replay, got %d", updated.QuantityAvailable)
	}
}

func TestListDamagedTools(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	damaged := createTestTool(t, database, "Torque Wrench", 10, 3)
	createTestTool(t, database, "Jack Stand", 4, 1)

	ReportDamage(ctx, database, ReportDamageParams{
		ToolID: damaged.ID, Quantity: 1, Notes: "bent handle", Actor: "mechanic",
	})
	ReportDamage(ctx, database, ReportDamageParams{
		ToolID: damaged.ID, Quantity: 2, Notes: "cracked casing", Actor: "mechanic",
	})

	report, err := ListDamagedTools(ctx, database)
	if err != nil {
		t.Fatalf("ListDamagedTools: %v", err)
	}
	if len(report) != 1 {
		t.Fatalf("expected 1 damaged tool, got %d", len(report))
	}
	if report[0].LatestReport == nil || report[0].LatestReport.Notes != "cracked casing" {
		t.Errorf("expected latest note 'cracked casing', got %v", report[0].LatestReport)
	}
}
