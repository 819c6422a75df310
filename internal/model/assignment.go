package model

import "time"

// Assignment represents one checkout of N units of a tool to a repair ticket.
type Assignment struct {
	ID           int64      `json:"id"`
	ToolID       int64      `json:"tool_id"`
	TicketID     int64      `json:"ticket_id"`
	TicketNumber string     `json:"ticket_number"`
	Quantity     int        `json:"quantity"`
	AssignedBy   string     `json:"assigned_by"`
	Status       string     `json:"status"`
	AssignedAt   time.Time  `json:"assigned_at"`
	ReturnedAt   *time.Time `json:"returned_at,omitempty"`

	// Joined fields (not always populated).
	ToolName string `json:"tool_name,omitempty"`
	ToolCode string `json:"tool_code,omitempty"`
}

// Assignment statuses. The only transition is in_use -> returned; a returned
// assignment is immutable.
const (
	AssignmentInUse    = "in_use"
	AssignmentReturned = "returned"
)
