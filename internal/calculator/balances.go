package calculator

import (
	"cmp"
	"slices"

	"github.com/shopspring/decimal"

	"github.com/mmynk/splitledger/internal/models"
)

// Ledger is everything the balance formula reads for one group.
type Ledger struct {
	Members      []string
	Transactions []*models.Transaction
	Settlements  []*models.Settlement
}

// MemberBalance is the balance breakdown for one group member.
type MemberBalance struct {
	UserID  string
	Paid    decimal.Decimal // Total of the expenses this member paid
	Share   decimal.Decimal // Equal share of all group expenses
	Settled decimal.Decimal // Total of this member's settlements
	Net     decimal.Decimal // Positive = owed money, Negative = owes money
}

// DebtEdge is a suggested transfer from a debtor to a creditor.
type DebtEdge struct {
	From   string // Member who owes
	To     string // Member who is owed
	Amount decimal.Decimal
}

// ComputeBalance returns a member's net balance, rounded to cents:
//
//	balance = paid - totalExpenses/memberCount + settled
//
// A group without members has a zero share. The result depends only on the
// ledger contents, not on the order of transactions or settlements.
func ComputeBalance(l Ledger, userID string) decimal.Decimal {
	return memberBalance(l, groupShare(l), userID).Net
}

// ComputeBalances returns the breakdown for every member, in member order.
func ComputeBalances(l Ledger) []MemberBalance {
	share := groupShare(l)
	balances := make([]MemberBalance, 0, len(l.Members))
	for _, id := range l.Members {
		balances = append(balances, memberBalance(l, share, id))
	}
	return balances
}

// OutstandingDebt sums what the members with a negative balance owe.
func OutstandingDebt(balances []MemberBalance) decimal.Decimal {
	total := decimal.Zero
	for _, b := range balances {
		if b.Net.IsNegative() {
			total = total.Add(b.Net.Neg())
		}
	}
	return total
}

func groupShare(l Ledger) decimal.Decimal {
	if len(l.Members) == 0 {
		return decimal.Zero
	}
	total := decimal.Zero
	for _, t := range l.Transactions {
		total = total.Add(t.Amount)
	}
	return total.Div(decimal.NewFromInt(int64(len(l.Members))))
}

func memberBalance(l Ledger, share decimal.Decimal, userID string) MemberBalance {
	paid := decimal.Zero
	for _, t := range l.Transactions {
		if t.PayerID == userID {
			paid = paid.Add(t.Amount)
		}
	}
	settled := decimal.Zero
	for _, s := range l.Settlements {
		if s.UserID == userID {
			settled = settled.Add(s.Amount)
		}
	}

	return MemberBalance{
		UserID:  userID,
		Paid:    paid,
		Share:   models.Round(share),
		Settled: settled,
		Net:     models.Round(paid.Sub(share).Add(settled)),
	}
}

// SimplifyDebts suggests a short list of transfers that would bring every
// balance to zero.
//
// Algorithm: sort debtors and creditors by size (largest first, ties by id),
// then greedily match the largest debt with the largest credit.
func SimplifyDebts(balances []MemberBalance) []DebtEdge {
	type party struct {
		id     string
		amount decimal.Decimal
	}

	var debtors, creditors []party
	for _, b := range balances {
		switch {
		case b.Net.IsNegative():
			debtors = append(debtors, party{id: b.UserID, amount: b.Net.Neg()})
		case b.Net.IsPositive():
			creditors = append(creditors, party{id: b.UserID, amount: b.Net})
		}
	}

	bySize := func(a, b party) int {
		if c := b.amount.Cmp(a.amount); c != 0 {
			return c
		}
		return cmp.Compare(a.id, b.id)
	}
	slices.SortFunc(debtors, bySize)
	slices.SortFunc(creditors, bySize)

	var edges []DebtEdge
	i, j := 0, 0
	for i < len(debtors) && j < len(creditors) {
		amount := decimal.Min(debtors[i].amount, creditors[j].amount)
		if amount.IsPositive() {
			edges = append(edges, DebtEdge{From: debtors[i].id, To: creditors[j].id, Amount: amount})
		}

		debtors[i].amount = debtors[i].amount.Sub(amount)
		creditors[j].amount = creditors[j].amount.Sub(amount)

		if !debtors[i].amount.IsPositive() {
			i++
		}
		if !creditors[j].amount.IsPositive() {
			j++
		}
	}
	return edges
}
