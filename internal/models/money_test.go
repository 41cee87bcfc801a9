package models

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/splitledger/internal/ledgererr"
)

func TestParseAndValidateAmount(t *testing.T) {
	tests := []struct {
		in   string
		code ledgererr.Code
	}{
		{"10", ""},
		{" 12.50 ", ""},
		{"0.01", ""},
		{"0", ledgererr.NonPositiveAmount},
		{"-3", ledgererr.NonPositiveAmount},
		{"1.005", ledgererr.AmountPrecision},
		{"ten", ledgererr.InvalidAmount},
		{"", ledgererr.InvalidAmount},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			d, err := ParseAmount("amount", tt.in)
			if err == nil {
				err = ValidateAmount("amount", d)
			}
			if tt.code == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Equal(t, tt.code, ledgererr.CodeOf(err))
			assert.Equal(t, ledgererr.KindValidation, ledgererr.KindOf(err))
		})
	}
}

func TestRoundAndFormat(t *testing.T) {
	assert.Equal(t, "0.01", Format(Round(decimal.RequireFromString("0.005"))))
	assert.Equal(t, "-0.01", Format(Round(decimal.RequireFromString("-0.005"))))
	assert.Equal(t, "33.33", Format(Round(decimal.NewFromInt(100).Div(decimal.NewFromInt(3)))))
	assert.Equal(t, "25.00", Format(decimal.NewFromInt(25)))
}

func TestWithinTolerance(t *testing.T) {
	hundred := decimal.NewFromInt(100)
	assert.True(t, WithinTolerance(decimal.RequireFromString("99.99"), hundred))
	assert.True(t, WithinTolerance(decimal.RequireFromString("100.01"), hundred))
	assert.False(t, WithinTolerance(decimal.RequireFromString("99.98"), hundred))
}

func TestEntityValidation(t *testing.T) {
	g := &Group{Title: "  "}
	assert.Equal(t, ledgererr.EmptyTitle, ledgererr.CodeOf(g.Validate()))

	txn := &Transaction{Title: "Taxi", Amount: decimal.Zero}
	assert.Equal(t, ledgererr.NonPositiveAmount, ledgererr.CodeOf(txn.Validate()))

	u := &User{Name: " Bob "}
	require.NoError(t, u.Validate())
	assert.Equal(t, "Bob", u.Name)
}
