package calculator

import (
	"slices"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/mmynk/splitledger/internal/ledgererr"
	"github.com/mmynk/splitledger/internal/models"
)

var oneHundred = decimal.NewFromInt(100)

// Strategy names a way of dividing an amount among group members.
type Strategy string

const (
	StrategyEqually    Strategy = "Equally"
	StrategyPercentage Strategy = "Percentage"
	StrategyDynamic    Strategy = "Dynamic"
)

// ParseStrategy matches s case-insensitively against the known strategies.
func ParseStrategy(s string) (Strategy, error) {
	for _, st := range []Strategy{StrategyEqually, StrategyPercentage, StrategyDynamic} {
		if strings.EqualFold(strings.TrimSpace(s), string(st)) {
			return st, nil
		}
	}
	return "", ledgererr.Validation(ledgererr.InvalidStrategy, "strategy", "unknown split strategy %q", s)
}

// Allocation is the amount assigned to one member.
type Allocation struct {
	UserID string
	Amount decimal.Decimal
}

// Split is the result of resolving a policy, ordered by ascending user ID.
type Split []Allocation

// Total sums all allocations.
func (s Split) Total() decimal.Decimal {
	total := decimal.Zero
	for _, a := range s {
		total = total.Add(a.Amount)
	}
	return total
}

// Map returns the allocations keyed by user ID.
func (s Split) Map() map[string]decimal.Decimal {
	m := make(map[string]decimal.Decimal, len(s))
	for _, a := range s {
		m[a.UserID] = a.Amount
	}
	return m
}

// Policy is one of Equally, Percentage or Dynamic.
type Policy interface {
	Strategy() Strategy
	resolve(total decimal.Decimal, members []string) (Split, error)
}

// Equally gives every member the same amount.
type Equally struct{}

// Percentage gives every member a percentage of the total.
// Every member must have an entry and the entries must add up to 100.
type Percentage struct {
	Shares map[string]decimal.Decimal
}

// Dynamic takes explicit amounts per member. Members without an entry get zero.
type Dynamic struct {
	Amounts map[string]decimal.Decimal
}

func (Equally) Strategy() Strategy    { return StrategyEqually }
func (Percentage) Strategy() Strategy { return StrategyPercentage }
func (Dynamic) Strategy() Strategy    { return StrategyDynamic }

// NewPolicy builds the policy for strategy from the request parameters.
// Parameters that the strategy does not use are ignored.
func NewPolicy(strategy Strategy, percentages, amounts map[string]decimal.Decimal) (Policy, error) {
	switch strategy {
	case StrategyEqually:
		return Equally{}, nil
	case StrategyPercentage:
		return Percentage{Shares: percentages}, nil
	case StrategyDynamic:
		return Dynamic{Amounts: amounts}, nil
	default:
		return nil, ledgererr.Validation(ledgererr.InvalidStrategy, "strategy", "unknown split strategy %q", strategy)
	}
}

// ResolveSplit divides total among members according to p.
//
// Members are processed in ascending user ID order. For Equally and
// Percentage the last member absorbs the rounding remainder, so the result
// always adds up to exactly total.
func ResolveSplit(p Policy, total decimal.Decimal, members []string) (Split, error) {
	if len(members) == 0 {
		return nil, ledgererr.Validation(ledgererr.NoMembers, "members", "cannot split among zero members")
	}
	sorted := slices.Clone(members)
	slices.Sort(sorted)
	sorted = slices.Compact(sorted)

	return p.resolve(total, sorted)
}

func (Equally) resolve(total decimal.Decimal, members []string) (Split, error) {
	if !total.IsPositive() {
		return nil, ledgererr.Validation(ledgererr.NonPositiveAmount, "total", "total must be greater than zero, got %s", total)
	}

	per := total.Div(decimal.NewFromInt(int64(len(members)))).Truncate(models.Cents)
	split := make(Split, len(members))
	for i, id := range members {
		split[i] = Allocation{UserID: id, Amount: per}
	}
	absorbRemainder(split, total)
	return split, nil
}

func (p Percentage) resolve(total decimal.Decimal, members []string) (Split, error) {
	if !total.IsPositive() {
		return nil, ledgererr.Validation(ledgererr.NonPositiveAmount, "total", "total must be greater than zero, got %s", total)
	}
	if err := checkParticipants("percentages", p.Shares, members); err != nil {
		return nil, err
	}

	sum := decimal.Zero
	for _, id := range members {
		pct, ok := p.Shares[id]
		if !ok {
			return nil, ledgererr.Validation(ledgererr.MissingParticipant, "percentages", "no percentage for member %s", id)
		}
		if pct.IsNegative() {
			return nil, ledgererr.Validation(ledgererr.NegativePercentage, "percentages", "percentage for member %s is negative: %s", id, pct)
		}
		sum = sum.Add(pct)
	}
	if !models.WithinTolerance(sum, oneHundred) {
		return nil, ledgererr.Validation(ledgererr.PercentageSum, "percentages", "percentages add up to %s, want 100", sum)
	}

	split := make(Split, len(members))
	for i, id := range members {
		split[i] = Allocation{UserID: id, Amount: models.Round(total.Mul(p.Shares[id]).Div(oneHundred))}
	}
	absorbRemainder(split, total)
	return split, nil
}

func (p Dynamic) resolve(total decimal.Decimal, members []string) (Split, error) {
	if err := checkParticipants("amounts", p.Amounts, members); err != nil {
		return nil, err
	}

	split := make(Split, len(members))
	for i, id := range members {
		amount := p.Amounts[id]
		if amount.IsNegative() {
			return nil, ledgererr.Validation(ledgererr.NegativeAmount, "amounts", "amount for member %s is negative: %s", id, amount)
		}
		if !amount.Equal(amount.Round(models.Cents)) {
			return nil, ledgererr.Validation(ledgererr.AmountPrecision, "amounts", "amount for member %s has more than %d decimal places: %s", id, models.Cents, amount)
		}
		split[i] = Allocation{UserID: id, Amount: amount}
	}
	if sum := split.Total(); !models.WithinTolerance(sum, total) {
		return nil, ledgererr.Validation(ledgererr.AmountMismatch, "amounts", "amounts add up to %s, want %s", sum, total)
	}
	return split, nil
}

// absorbRemainder replaces the last allocation with total minus all the others.
func absorbRemainder(split Split, total decimal.Decimal) {
	last := len(split) - 1
	others := split[:last].Total()
	split[last].Amount = total.Sub(others)
}

func checkParticipants(field string, params map[string]decimal.Decimal, members []string) error {
	ids := make([]string, 0, len(params))
	for id := range params {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	for _, id := range ids {
		if _, found := slices.BinarySearch(members, id); !found {
			return ledgererr.Validation(ledgererr.UnknownParticipant, field, "%s is not a member of the group", id)
		}
	}
	return nil
}
