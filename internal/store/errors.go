package store

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for the ledger's failure classes. Handlers map these to
// HTTP status codes; everything else is treated as a storage fault and is
// safe to retry because the failed transaction is fully rolled back.
var (
	ErrToolNotFound       = errors.New("tool not found")
	ErrAssignmentNotFound = errors.New("assignment not found")
	ErrAlreadyReturned    = errors.New("assignment already returned")
	ErrInvalidQuantity    = errors.New("quantity must be positive")
	ErrDuplicateCode      = errors.New("tool code already exists")
	ErrDuplicateRequest   = errors.New("request already processed")
	ErrToolInUse          = errors.New("tool has assignments or damage reports")
)

// InsufficientStockError is a business-rule rejection carrying the current
// available quantity so the caller can adjust without a second read.
type InsufficientStockError struct {
	Available int
	Requested int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock: have %d, need %d", e.Available, e.Requested)
}

// isUniqueViolation reports whether err is a SQLite unique-constraint failure.
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
