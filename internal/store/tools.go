package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/garageops/toolledger/internal/model"
)

const toolColumns = `id, tool_code, name, brand, category, quantity_available,
	min_stock, condition, status, notes, total_acquired, created_at, updated_at`

// CreateToolParams are the fields for manual tool intake.
type CreateToolParams struct {
	Name      string
	Brand     string
	Category  string
	Quantity  int
	MinStock  int
	Condition string
}

// CreateTool records a new tool type. The quantity supplied at intake becomes
// the tool's conservation baseline; every later check-in adds to it.
func CreateTool(ctx context.Context, db *sql.DB, params CreateToolParams) (*model.Tool, error) {
	if params.Quantity < 0 || params.MinStock < 0 {
		return nil, ErrInvalidQuantity
	}
	if params.Condition == "" {
		params.Condition = model.ConditionGood
	}

	status := model.DeriveStatus(params.Quantity, params.MinStock, params.Condition, model.DefaultDamagePolicy)

	// The code is computed in the same statement that claims the row, so
	// codes stay monotonic without a separate counter.
	result, err := db.ExecContext(ctx,
		`INSERT INTO tools (tool_code, name, brand, category, quantity_available, min_stock, condition, status, total_acquired)
		 VALUES (printf('TOL%06d', (SELECT COALESCE(MAX(id), 0) + 1 FROM tools)), ?, ?, ?, ?, ?, ?, ?, ?)`,
		params.Name, params.Brand, params.Category, params.Quantity, params.MinStock, params.Condition, status, params.Quantity,
	)
	if isUniqueViolation(err) {
		return nil, ErrDuplicateCode
	}
	if err != nil {
		return nil, fmt.Errorf("creating tool: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting tool id: %w", err)
	}

	return GetTool(ctx, db, id)
}

// GetTool returns a tool by ID, or ErrToolNotFound.
func GetTool(ctx context.Context, db *sql.DB, id int64) (*model.Tool, error) {
	row := db.QueryRowContext(ctx,
		`SELECT `+toolColumns+` FROM tools WHERE id = ?`, id,
	)
	return scanTool(row)
}

// getToolForUpdate reads a tool inside a transaction. With SQLite's single
// writer, the read-modify-write that follows is serialized per database, so
// the row cannot change under the transaction.
func getToolForUpdate(ctx context.Context, tx *sql.Tx, id int64) (*model.Tool, error) {
	row := tx.QueryRowContext(ctx,
		`SELECT `+toolColumns+` FROM tools WHERE id = ?`, id,
	)
	return scanTool(row)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTool(row rowScanner) (*model.Tool, error) {
	tool := &model.Tool{}
	var brand, category, notes sql.NullString
	err := row.Scan(&tool.ID, &tool.ToolCode, &tool.Name, &brand, &category,
		&tool.QuantityAvailable, &tool.MinStock, &tool.Condition, &tool.Status,
		&notes, &tool.TotalAcquired, &tool.CreatedAt, &tool.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrToolNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scanning tool: %w", err)
	}
	tool.Brand = brand.String
	tool.Category = category.String
	tool.Notes = notes.String
	return tool, nil
}

// ListTools returns all tools, optionally filtered by status.
func ListTools(ctx context.Context, db *sql.DB, status string) ([]model.Tool, error) {
	query := `SELECT ` + toolColumns + ` FROM tools`
	var args []any
	if status != "" {
		query += ` WHERE status = ?`
		args = append(args, status)
	}
	query += ` ORDER BY name`

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing tools: %w", err)
	}
	defer rows.Close()

	var tools []model.Tool
	for rows.Next() {
		tool, err := scanTool(rows)
		if err != nil {
			return nil, err
		}
		tools = append(tools, *tool)
	}
	return tools, rows.Err()
}

// DeleteTool removes a tool. Deletion is an administrative operation and is
// refused while any assignment or damage report still references the tool.
func DeleteTool(ctx context.Context, db *sql.DB, id int64) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := getToolForUpdate(ctx, tx, id); err != nil {
		return err
	}

	var dependents int
	err = tx.QueryRowContext(ctx,
		`SELECT (SELECT COUNT(*) FROM assignments WHERE tool_id = ?)
		      + (SELECT COUNT(*) FROM damage_reports WHERE tool_id = ?)`,
		id, id,
	).Scan(&dependents)
	if err != nil {
		return fmt.Errorf("checking dependents: %w", err)
	}
	if dependents > 0 {
		return ErrToolInUse
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM activity_log WHERE tool_id = ?`, id); err != nil {
		return fmt.Errorf("deleting tool activity: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM tools WHERE id = ?`, id); err != nil {
		return fmt.Errorf("deleting tool: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing tool deletion: %w", err)
	}
	return nil
}
