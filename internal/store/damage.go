package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/garageops/toolledger/internal/model"
	"github.com/garageops/toolledger/internal/notify"
)

// ReportDamageParams are the fields for a damage report.
type ReportDamageParams struct {
	ToolID         int64
	Quantity       int
	Notes          string
	Actor          string
	IdempotencyKey string
}

// ReportDamage removes quantity units from the available pool and marks the
// tool type damaged. Damage can only be reported against currently-available
// stock; units still in custody must be returned first.
func ReportDamage(ctx context.Context, db *sql.DB, params ReportDamageParams) (*model.Tool, []notify.Event, error) {
	if params.Quantity <= 0 {
		return nil, nil, ErrInvalidQuantity
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if err := claimIdempotencyKey(ctx, tx, params.IdempotencyKey); err != nil {
		return nil, nil, err
	}

	tool, err := getToolForUpdate(ctx, tx, params.ToolID)
	if err != nil {
		return nil, nil, err
	}

	if tool.QuantityAvailable < params.Quantity {
		return nil, nil, &InsufficientStockError{Available: tool.QuantityAvailable, Requested: params.Quantity}
	}

	newQty := tool.QuantityAvailable - params.Quantity
	status := model.DeriveStatus(newQty, tool.MinStock, model.ConditionDamaged, model.DefaultDamagePolicy)

	_, err = tx.ExecContext(ctx,
		`UPDATE tools SET quantity_available = ?, condition = ?, status = ?, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ?`,
		newQty, model.ConditionDamaged, status, tool.ID,
	)
	if err != nil {
		return nil, nil, fmt.Errorf("updating tool quantity: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO damage_reports (tool_id, reported_by, quantity, notes)
		 VALUES (?, ?, ?, ?)`,
		tool.ID, params.Actor, params.Quantity, params.Notes,
	)
	if err != nil {
		return nil, nil, fmt.Errorf("recording damage report: %w", err)
	}

	message := fmt.Sprintf("reported %d x %s damaged: %s", params.Quantity, tool.Name, params.Notes)
	if err := appendActivity(ctx, tx, model.ActivityDamage, tool.ID, nil, "", params.Actor, message); err != nil {
		return nil, nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, nil, fmt.Errorf("committing damage report: %w", err)
	}

	updated, err := GetTool(ctx, db, tool.ID)
	if err != nil {
		return nil, nil, err
	}

	events := []notify.Event{notify.NewEvent(notify.EventToolDamaged, tool.ID, tool.ToolCode, params.Quantity)}
	return updated, events, nil
}

// DamagedTool couples a tool with its most recent damage report.
type DamagedTool struct {
	Tool         model.Tool          `json:"tool"`
	LatestReport *model.DamageReport `json:"latest_report,omitempty"`
}

// ListDamagedTools returns all tools in damaged condition with their latest
// damage note.
func ListDamagedTools(ctx context.Context, db *sql.DB) ([]DamagedTool, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT `+toolColumns+` FROM tools WHERE condition = ? ORDER BY name`,
		model.ConditionDamaged,
	)
	if err != nil {
		return nil, fmt.Errorf("listing damaged tools: %w", err)
	}
	defer rows.Close()

	var damaged []DamagedTool
	for rows.Next() {
		tool, err := scanTool(rows)
		if err != nil {
			return nil, err
		}
		damaged = append(damaged, DamagedTool{Tool: *tool})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range damaged {
		report, err := latestDamageReport(ctx, db, damaged[i].Tool.ID)
		if err != nil {
			return nil, err
		}
		damaged[i].LatestReport = report
	}
	return damaged, nil
}

func latestDamageReport(ctx context.Context, db *sql.DB, toolID int64) (*model.DamageReport, error) {
	r := &model.DamageReport{}
	var notes sql.NullString
	err := db.QueryRowContext(ctx,
		`SELECT d.id, d.tool_id, d.reported_by, d.quantity, d.notes, d.reported_at
		 FROM damage_reports d
		 WHERE d.tool_id = ?
		 ORDER BY d.reported_at DESC, d.id DESC
		 LIMIT 1`, toolID,
	).Scan(&r.ID, &r.ToolID, &r.ReportedBy, &r.Quantity, &notes, &r.ReportedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting latest damage report: %w", err)
	}
	r.Notes = notes.String
	return r, nil
}

// ListDamageReports returns all damage reports for a tool, newest first.
func ListDamageReports(ctx context.Context, db *sql.DB, toolID int64) ([]model.DamageReport, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT d.id, d.tool_id, d.reported_by, d.quantity, d.notes, d.reported_at, t.name, t.tool_code
		 FROM damage_reports d
		 JOIN tools t ON t.id = d.tool_id
		 WHERE d.tool_id = ?
		 ORDER BY d.reported_at DESC, d.id DESC`, toolID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing damage reports: %w", err)
	}
	defer rows.Close()

	var reports []model.DamageReport
	for rows.Next() {
		var r model.DamageReport
		var notes sql.NullString
		if err := rows.Scan(&r.ID, &r.ToolID, &r.ReportedBy, &r.Quantity, &notes, &r.ReportedAt, &r.ToolName, &r.ToolCode); err != nil {
			return nil, fmt.Errorf("scanning damage report: %w", err)
		}
		r.Notes = notes.String
		reports = append(reports, r)
	}
	return reports, rows.Err()
}
