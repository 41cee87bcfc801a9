package calculator

import (
	"math/rand/v2"
	"slices"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/splitledger/internal/models"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func txn(payer, amount string) *models.Transaction {
	return &models.Transaction{PayerID: payer, Title: "expense", Amount: dec(amount)}
}

func settlement(user, amount string) *models.Settlement {
	return &models.Settlement{UserID: user, Amount: dec(amount)}
}

func TestComputeBalance(t *testing.T) {
	tests := []struct {
		name   string
		ledger Ledger
		user   string
		want   string
	}{
		{
			name: "payer is owed half of a shared expense",
			ledger: Ledger{
				Members:      []string{"alice", "bob"},
				Transactions: []*models.Transaction{txn("alice", "50")},
			},
			user: "alice",
			want: "25",
		},
		{
			name: "non payer owes half",
			ledger: Ledger{
				Members:      []string{"alice", "bob"},
				Transactions: []*models.Transaction{txn("alice", "50")},
			},
			user: "bob",
			want: "-25",
		},
		{
			name: "settlement clears the debt",
			ledger: Ledger{
				Members:      []string{"alice", "bob"},
				Transactions: []*models.Transaction{txn("alice", "50")},
				Settlements:  []*models.Settlement{settlement("bob", "25")},
			},
			user: "bob",
			want: "0",
		},
		{
			name: "sole member nets to zero",
			ledger: Ledger{
				Members:      []string{"alice"},
				Transactions: []*models.Transaction{txn("alice", "42.17")},
			},
			user: "alice",
			want: "0",
		},
		{
			name: "group without members has no share",
			ledger: Ledger{
				Transactions: []*models.Transaction{txn("alice", "30")},
			},
			user: "alice",
			want: "30",
		},
		{
			name: "three way share rounds to cents",
			ledger: Ledger{
				Members:      []string{"alice", "bob", "carol"},
				Transactions: []*models.Transaction{txn("alice", "100")},
			},
			user: "bob",
			want: "-33.33",
		},
		{
			name: "partial settlement",
			ledger: Ledger{
				Members:      []string{"alice", "bob", "carol"},
				Transactions: []*models.Transaction{txn("alice", "45"), txn("bob", "15")},
				Settlements:  []*models.Settlement{settlement("carol", "5")},
			},
			user: "carol",
			want: "-15",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputeBalance(tt.ledger, tt.user)
			assert.True(t, got.Equal(dec(tt.want)), "got %s, want %s", got, tt.want)
		})
	}
}

func TestComputeBalanceIsPure(t *testing.T) {
	l := Ledger{
		Members: []string{"alice", "bob", "carol"},
		Transactions: []*models.Transaction{
			txn("alice", "12.40"), txn("bob", "99.99"), txn("carol", "0.01"), txn("alice", "7"),
		},
		Settlements: []*models.Settlement{settlement("carol", "10"), settlement("bob", "1.5")},
	}

	first := ComputeBalances(l)
	again := ComputeBalances(l)
	require.Equal(t, len(first), len(again))
	for i := range first {
		assert.True(t, first[i].Net.Equal(again[i].Net))
	}

	rng := rand.New(rand.NewPCG(1, 2))
	for range 10 {
		shuffled := Ledger{
			Members:      l.Members,
			Transactions: slices.Clone(l.Transactions),
			Settlements:  slices.Clone(l.Settlements),
		}
		rng.Shuffle(len(shuffled.Transactions), func(i, j int) {
			shuffled.Transactions[i], shuffled.Transactions[j] = shuffled.Transactions[j], shuffled.Transactions[i]
		})
		rng.Shuffle(len(shuffled.Settlements), func(i, j int) {
			shuffled.Settlements[i], shuffled.Settlements[j] = shuffled.Settlements[j], shuffled.Settlements[i]
		})
		for _, id := range l.Members {
			assert.True(t, ComputeBalance(l, id).Equal(ComputeBalance(shuffled, id)), "balance of %s changed with order", id)
		}
	}
}

func TestComputeBalancesSumToZero(t *testing.T) {
	l := Ledger{
		Members:      []string{"alice", "bob", "carol"},
		Transactions: []*models.Transaction{txn("alice", "100"), txn("carol", "20.05")},
	}

	sum := decimal.Zero
	for _, b := range ComputeBalances(l) {
		sum = sum.Add(b.Net)
	}
	// Each net is rounded to cents, so the sum may be off by one cent per member.
	assert.True(t, sum.Abs().LessThanOrEqual(dec("0.03")), "sum = %s", sum)
}

func TestComputeBalancesBreakdown(t *testing.T) {
	l := Ledger{
		Members:      []string{"alice", "bob"},
		Transactions: []*models.Transaction{txn("alice", "50"), txn("bob", "10")},
		Settlements:  []*models.Settlement{settlement("bob", "5")},
	}

	balances := ComputeBalances(l)
	require.Len(t, balances, 2)

	bob := balances[1]
	assert.Equal(t, "bob", bob.UserID)
	assert.True(t, bob.Paid.Equal(dec("10")))
	assert.True(t, bob.Share.Equal(dec("30")))
	assert.True(t, bob.Settled.Equal(dec("5")))
	assert.True(t, bob.Net.Equal(dec("-15")))

	assert.True(t, OutstandingDebt(balances).Equal(dec("15")))
}

func TestSimplifyDebts(t *testing.T) {
	balances := []MemberBalance{
		{UserID: "alice", Net: dec("40")},
		{UserID: "bob", Net: dec("-25")},
		{UserID: "carol", Net: dec("-15")},
		{UserID: "dave", Net: dec("0")},
	}

	edges := SimplifyDebts(balances)
	require.Len(t, edges, 2)
	assert.Equal(t, "bob", edges[0].From)
	assert.Equal(t, "alice", edges[0].To)
	assert.True(t, edges[0].Amount.Equal(dec("25")))
	assert.Equal(t, "carol", edges[1].From)
	assert.True(t, edges[1].Amount.Equal(dec("15")))
}

func TestSimplifyDebtsSettledGroup(t *testing.T) {
	edges := SimplifyDebts([]MemberBalance{{UserID: "alice", Net: decimal.Zero}})
	assert.Empty(t, edges)
}
