package models

import "github.com/shopspring/decimal"

// Settlement is a payment a member makes to reduce their debt to the group.
// It raises the member's balance by Amount.
type Settlement struct {
	// ID is the unique identifier for the settlement (UUID format).
	ID string

	// GroupID is the group this settlement belongs to.
	GroupID string

	// UserID is the member whose balance this settlement raises.
	UserID string

	// Amount is the settled amount.
	Amount decimal.Decimal

	// Strategy is the split strategy that produced this settlement
	// ("Direct", "Equally", "Percentage" or "Dynamic").
	Strategy string

	// BatchID is shared by all settlements written by one settle request.
	BatchID string

	// CreatedBy is the user ID who recorded this settlement.
	CreatedBy string

	// CreatedAt is the Unix timestamp when the settlement was recorded.
	CreatedAt int64
}
