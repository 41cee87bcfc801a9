package models

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/mmynk/splitledger/internal/ledgererr"
)

// Transaction is an expense paid by one member for the whole group.
// Every current member owes an equal share of it.
type Transaction struct {
	// ID is the unique identifier for the transaction (UUID format).
	ID string

	// GroupID is the group this expense belongs to.
	GroupID string

	// PayerID is the member who paid.
	PayerID string

	// Title describes the expense (e.g., "Groceries").
	Title string

	// Amount is the paid amount. Always positive.
	Amount decimal.Decimal

	// CreatedAt is the Unix timestamp when the expense was recorded.
	CreatedAt int64
}

// Validate trims the title and checks the title and amount.
func (t *Transaction) Validate() error {
	t.Title = strings.TrimSpace(t.Title)
	if t.Title == "" {
		return ledgererr.Validation(ledgererr.EmptyTitle, "title", "title must not be empty")
	}
	return ValidateAmount("amount", t.Amount)
}
