package model

import "time"

// ActivityEntry is one row of the append-only audit trail. Every mutating
// operation writes exactly one entry in the same transaction as the state
// change it describes.
type ActivityEntry struct {
	ID           int64     `json:"id"`
	Type         string    `json:"type"`
	ToolID       int64     `json:"tool_id"`
	TicketID     *int64    `json:"ticket_id,omitempty"`
	TicketNumber string    `json:"ticket_number,omitempty"`
	Actor        string    `json:"actor"`
	Message      string    `json:"message"`
	OccurredAt   time.Time `json:"occurred_at"`
}

// Activity entry types.
const (
	ActivityAssignment = "assignment"
	ActivityReturn     = "return"
	ActivityCheckIn    = "check_in"
	ActivityDamage     = "damage"
	ActivityAdjustment = "adjustment"
)
