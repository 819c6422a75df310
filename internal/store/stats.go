package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/garageops/toolledger/internal/model"
)

// Stats is the aggregate summary over committed ledger state.
type Stats struct {
	TotalTools     int `json:"total_tools"`
	TotalQuantity  int `json:"total_quantity"`
	ToolsInUse     int `json:"tools_in_use"`
	AvailableTools int `json:"available_tools"`
	DamagedTools   int `json:"damaged_tools"`
	ReturnedTools  int `json:"returned_tools"`
	ReturnedToday  int `json:"returned_today"`
}

// GetStats computes the summary by scanning committed state. It reads only,
// takes no locks, and is safe to retry.
func GetStats(ctx context.Context, db *sql.DB) (*Stats, error) {
	stats := &Stats{}

	err := db.QueryRowContext(ctx,
		`SELECT COUNT(*), COALESCE(SUM(quantity_available), 0) FROM tools`,
	).Scan(&stats.TotalTools, &stats.TotalQuantity)
	if err != nil {
		return nil, fmt.Errorf("counting tools: %w", err)
	}

	err = db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(quantity), 0) FROM assignments WHERE status = ?`,
		model.AssignmentInUse,
	).Scan(&stats.ToolsInUse)
	if err != nil {
		return nil, fmt.Errorf("summing in-use quantity: %w", err)
	}

	stats.AvailableTools = stats.TotalQuantity - stats.ToolsInUse
	if stats.AvailableTools < 0 {
		stats.AvailableTools = 0
	}

	err = db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM tools WHERE condition = ?`, model.ConditionDamaged,
	).Scan(&stats.DamagedTools)
	if err != nil {
		return nil, fmt.Errorf("counting damaged tools: %w", err)
	}

	err = db.QueryRowContext(ctx,
		`SELECT COUNT(*),
		        COALESCE(SUM(CASE WHEN date(returned_at) = date('now') THEN 1 ELSE 0 END), 0)
		 FROM assignments WHERE status = ?`,
		model.AssignmentReturned,
	).Scan(&stats.ReturnedTools, &stats.ReturnedToday)
	if err != nil {
		return nil, fmt.Errorf("counting returned assignments: %w", err)
	}

	return stats, nil
}
