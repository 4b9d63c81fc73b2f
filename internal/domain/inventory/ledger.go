package inventory

import (
	"fmt"
	"strings"

	"github.com/farmsaathi/backend/internal/domain/shared"
)

// ViolationKind identifies one ledger rule
type ViolationKind string

const (
	ViolationInvalidMovementType ViolationKind = "INVALID_MOVEMENT_TYPE"
	ViolationInvalidQuantity     ViolationKind = "INVALID_QUANTITY"
	ViolationInsufficientStock   ViolationKind = "INSUFFICIENT_STOCK"
	ViolationInvalidReason       ViolationKind = "INVALID_REASON"
	ViolationInvalidMovementDate ViolationKind = "INVALID_MOVEMENT_DATE"
)

// Violation is a single broken ledger rule
type Violation struct {
	Kind    ViolationKind `json:"code"`
	Message string        `json:"message"`
}

// LedgerError lists every rule a movement broke
type LedgerError struct {
	Violations []Violation
}

// Error implements the error interface
func (e *LedgerError) Error() string {
	msgs := make([]string, len(e.Violations))
	for i, v := range e.Violations {
		msgs[i] = v.Message
	}
	return strings.Join(msgs, " ")
}

// Has reports whether the error carries a violation of kind
func (e *LedgerError) Has(kind ViolationKind) bool {
	for _, v := range e.Violations {
		if v.Kind == kind {
			return true
		}
	}
	return false
}

// Is lets errors.Is(err, shared.ErrInsufficientStock) match a ledger error
// that includes an insufficient stock violation.
func (e *LedgerError) Is(target error) bool {
	return target == shared.ErrInsufficientStock && e.Has(ViolationInsufficientStock)
}

// Add appends a violation
func (e *LedgerError) Add(kind ViolationKind, message string) {
	e.Violations = append(e.Violations, Violation{Kind: kind, Message: message})
}

// InsufficientStockError builds the error for an out movement larger than available
func InsufficientStockError(available fmt.Stringer, unit string) *LedgerError {
	e := &LedgerError{}
	e.Add(ViolationInsufficientStock, insufficientStockMessage(available, unit))
	return e
}

func insufficientStockMessage(available fmt.Stringer, unit string) string {
	return strings.TrimSpace(fmt.Sprintf("Cannot remove more than available stock (%s %s)", available, unit)) + "."
}

// ValidateMovement checks a movement against the item's current quantity and
// returns every violated rule at once.
func ValidateMovement(item *InventoryItem, req MovementRequest) error {
	e := &LedgerError{}

	if !req.Type.IsValid() {
		e.Add(ViolationInvalidMovementType, "Please select movement type.")
	}
	if !req.Quantity.IsPositive() {
		e.Add(ViolationInvalidQuantity, "Quantity must be greater than 0.")
	} else if !FitsQuantityScale(req.Quantity) {
		e.Add(ViolationInvalidQuantity, "Quantity can have at most 4 decimal places.")
	} else if req.Type == MovementOut && req.Quantity.GreaterThan(item.Quantity) {
		e.Add(ViolationInsufficientStock, insufficientStockMessage(item.Quantity, item.Unit))
	}
	if strings.TrimSpace(req.Reason) == "" {
		e.Add(ViolationInvalidReason, "Please provide a reason for this movement.")
	}

	if len(e.Violations) > 0 {
		return e
	}
	return nil
}
