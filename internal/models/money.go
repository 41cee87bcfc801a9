package models

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/mmynk/splitledger/internal/ledgererr"
)

// Cents is the number of fractional digits money is reported with.
const Cents = 2

// Tolerance is the largest difference two sums may have and still be equal.
var Tolerance = decimal.New(1, -Cents)

// ParseAmount parses an exact decimal string such as "12.50".
func ParseAmount(field, s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Zero, ledgererr.Validation(ledgererr.InvalidAmount, field, "%q is not a decimal amount", s)
	}
	return d, nil
}

// ValidateAmount checks that d is positive and has at most two fractional digits.
func ValidateAmount(field string, d decimal.Decimal) error {
	if !d.IsPositive() {
		return ledgererr.Validation(ledgererr.NonPositiveAmount, field, "amount must be greater than zero, got %s", d)
	}
	if !d.Equal(d.Round(Cents)) {
		return ledgererr.Validation(ledgererr.AmountPrecision, field, "amount %s has more than %d decimal places", d, Cents)
	}
	return nil
}

// Round rounds d to cents, half away from zero.
func Round(d decimal.Decimal) decimal.Decimal {
	return d.Round(Cents)
}

// Format renders d with exactly two decimal places.
func Format(d decimal.Decimal) string {
	return d.StringFixed(Cents)
}

// WithinTolerance reports whether a and b differ by at most Tolerance.
func WithinTolerance(a, b decimal.Decimal) bool {
	return a.Sub(b).Abs().LessThanOrEqual(Tolerance)
}
