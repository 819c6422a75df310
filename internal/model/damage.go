package model

import "time"

// DamageReport is a permanent record of units removed from availability due
// to damage. Reports are append-only; repair or disposal of the damaged units
// happens outside the ledger.
type DamageReport struct {
	ID         int64     `json:"id"`
	ToolID     int64     `json:"tool_id"`
	ReportedBy string    `json:"reported_by"`
	Quantity   int       `json:"quantity"`
	Notes      string    `json:"notes,omitempty"`
	ReportedAt time.Time `json:"reported_at"`

	// Joined fields (not always populated).
	ToolName string `json:"tool_name,omitempty"`
	ToolCode string `json:"tool_code,omitempty"`
}
