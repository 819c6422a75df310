package model

import (
	"fmt"
	"time"
)

// Tool represents a tool type tracked by count, not by individual serial.
type Tool struct {
	ID                int64     `json:"id"`
	ToolCode          string    `json:"tool_code"`
	Name              string    `json:"name"`
	Brand             string    `json:"brand,omitempty"`
	Category          string    `json:"category,omitempty"`
	QuantityAvailable int       `json:"quantity_available"`
	MinStock          int       `json:"min_stock"`
	Condition         string    `json:"condition"`
	Status            string    `json:"status"`
	Notes             string    `json:"notes,omitempty"`
	TotalAcquired     int       `json:"total_acquired"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// Tool conditions.
const (
	ConditionGood    = "good"
	ConditionDamaged = "damaged"
)

// Tool statuses. Status is always derived from quantity, threshold and
// condition; it is never set directly by callers.
const (
	StatusAvailable  = "available"
	StatusLowStock   = "low_stock"
	StatusOutOfStock = "out_of_stock"
	StatusDamaged    = "damaged"
)

// DamagePolicy controls how a tool's damaged condition affects its derived
// status. With OverridesAvailability set, a tool with reported damage reads as
// damaged even when its count is above the reorder threshold, and stays that
// way until an operator explicitly resets the condition.
type DamagePolicy struct {
	OverridesAvailability bool
}

// DefaultDamagePolicy matches the garage's operating rule: any reported
// damage makes the whole tool type visibly damaged.
var DefaultDamagePolicy = DamagePolicy{OverridesAvailability: true}

// DeriveStatus computes a tool's status from its quantity, reorder threshold
// and condition. Out-of-stock and low-stock take precedence over the damage
// override.
func DeriveStatus(quantity, minStock int, condition string, policy DamagePolicy) string {
	switch {
	case quantity == 0:
		return StatusOutOfStock
	case quantity <= minStock:
		return StatusLowStock
	case condition == ConditionDamaged && policy.OverridesAvailability:
		return StatusDamaged
	default:
		return StatusAvailable
	}
}

// ToolCode formats the human-facing code for a tool id, e.g. TOL000123.
func ToolCode(id int64) string {
	return fmt.Sprintf("TOL%06d", id)
}
