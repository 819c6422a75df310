package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/garageops/toolledger/internal/model"
)

// CheckInParams are the fields for an unconditional restock: a new purchase
// or a repaired unit returning to the pool.
type CheckInParams struct {
	ToolID    int64
	Quantity  int
	Condition string // optional; resets the tool's condition when set
	Notes     string
	Actor     string
	// IdempotencyKey, when supplied, deduplicates client retries within the
	// same transaction that applies the restock.
	IdempotencyKey string
}

// CheckInTool increases a tool's available quantity outside any custody link.
// The increase also raises the tool's conservation baseline.
func CheckInTool(ctx context.Context, db *sql.DB, params CheckInParams) (*model.Tool, error) {
	if params.Quantity <= 0 {
		return nil, ErrInvalidQuantity
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if err := claimIdempotencyKey(ctx, tx, params.IdempotencyKey); err != nil {
		return nil, err
	}

	tool, err := getToolForUpdate(ctx, tx, params.ToolID)
	if err != nil {
		return nil, err
	}

	condition := tool.Condition
	if params.Condition != "" {
		condition = params.Condition
	}

	notes := tool.Notes
	if params.Notes != "" {
		if notes != "" {
			notes += "\n"
		}
		notes += params.Notes
	}

	newQty := tool.QuantityAvailable + params.Quantity
	status := model.DeriveStatus(newQty, tool.MinStock, condition, model.DefaultDamagePolicy)

	_, err = tx.ExecContext(ctx,
		`UPDATE tools SET quantity_available = ?, condition = ?, status = ?, notes = ?,
		        total_acquired = total_acquired + ?, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ?`,
		newQty, condition, status, notes, params.Quantity, tool.ID,
	)
	if err != nil {
		return nil, fmt.Errorf("updating tool quantity: %w", err)
	}

	message := fmt.Sprintf("checked in %d x %s", params.Quantity, tool.Name)
	if params.Notes != "" {
		message += ": " + strings.TrimSpace(params.Notes)
	}
	if err := appendActivity(ctx, tx, model.ActivityCheckIn, tool.ID, nil, "", params.Actor, message); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing check-in: %w", err)
	}

	return GetTool(ctx, db, tool.ID)
}

// AdjustQuantity overwrites a tool's available quantity directly, for audit
// corrections. Unlike the damage workflow, the recomputed status here ignores
// the damage override: a manual correction states the count, not the
// condition. The condition flag itself is left untouched.
func AdjustQuantity(ctx context.Context, db *sql.DB, toolID int64, newQuantity int, actor string) (*model.Tool, error) {
	if newQuantity < 0 {
		return nil, ErrInvalidQuantity
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	tool, err := getToolForUpdate(ctx, tx, toolID)
	if err != nil {
		return nil, err
	}

	status := model.DeriveStatus(newQuantity, tool.MinStock, tool.Condition,
		model.DamagePolicy{OverridesAvailability: false})

	_, err = tx.ExecContext(ctx,
		`UPDATE tools SET quantity_available = ?, status = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		newQuantity, status, tool.ID,
	)
	if err != nil {
		return nil, fmt.Errorf("adjusting tool quantity: %w", err)
	}

	message := fmt.Sprintf("adjusted %s quantity from %d to %d", tool.Name, tool.QuantityAvailable, newQuantity)
	if err := appendActivity(ctx, tx, model.ActivityAdjustment, tool.ID, nil, "", actor, message); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing adjustment: %w", err)
	}

	return GetTool(ctx, db, tool.ID)
}

// claimIdempotencyKey records a client-generated request key inside the
// transaction. A replayed key fails with ErrDuplicateRequest before any state
// changes. Empty keys are ignored (the caller opted out).
func claimIdempotencyKey(ctx context.Context, tx *sql.Tx, key string) error {
	if key == "" {
		return nil
	}
	_, err := tx.ExecContext(ctx, `INSERT INTO idempotency_keys (key) VALUES (?)`, key)
	if isUniqueViolation(err) {
		return ErrDuplicateRequest
	}
	if err != nil {
		return fmt.Errorf("claiming idempotency key: %w", err)
	}
	return nil
}
