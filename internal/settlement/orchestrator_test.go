package settlement

import (
	"context"
	"path/filepath"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/splitledger/internal/calculator"
	"github.com/mmynk/splitledger/internal/ledgererr"
	"github.com/mmynk/splitledger/internal/locks"
	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/storage"
	"github.com/mmynk/splitledger/internal/storage/sqlstore"
)

type fixture struct {
	store *sqlstore.Store
	group *models.Group
	users map[string]string // name -> id
}

// newFixture creates a group whose members are names, in order, and records
// the given expenses as payer name -> amount pairs.
func newFixture(t *testing.T, names []string, expenses ...string) *fixture {
	t.Helper()
	ctx := context.Background()

	store, err := sqlstore.New(filepath.Join(t.TempDir(), "ledger.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	f := &fixture{store: store, users: map[string]string{}}
	var members []string
	for _, name := range names {
		u := &models.User{Name: name}
		require.NoError(t, store.CreateUser(ctx, u))
		f.users[name] = u.ID
		members = append(members, u.ID)
	}

	f.group = &models.Group{Title: "Test", Members: members}
	require.NoError(t, store.CreateGroup(ctx, f.group))

	for i := 0; i+1 < len(expenses); i += 2 {
		require.NoError(t, store.CreateTransaction(ctx, &models.Transaction{
			GroupID: f.group.ID,
			PayerID: f.users[expenses[i]],
			Title:   "expense",
			Amount:  decimal.RequireFromString(expenses[i+1]),
		}))
	}
	return f
}

func (f *fixture) balance(t *testing.T, name string) decimal.Decimal {
	t.Helper()
	ledger, err := f.store.LoadLedger(context.Background(), f.group.ID)
	require.NoError(t, err)
	return calculator.ComputeBalance(ledger.Input(), f.users[name])
}

func (f *fixture) settlements(t *testing.T) []*models.Settlement {
	t.Helper()
	list, err := f.store.ListSettlements(context.Background(), f.group.ID)
	require.NoError(t, err)
	return list
}

func amount(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

type fakeRecorder struct {
	mu       sync.Mutex
	outcomes []string
}

func (r *fakeRecorder) ObserveSettlement(strategy, outcome string, _ decimal.Decimal) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.outcomes = append(r.outcomes, strategy+":"+outcome)
}

func TestSettleDirect(t *testing.T) {
	f := newFixture(t, []string{"Alice", "Bob"}, "Alice", "50")
	rec := &fakeRecorder{}
	o := New(f.store, locks.NewLocal(), WithRecorder(rec))
	ctx := context.Background()

	assert.True(t, f.balance(t, "Bob").Equal(amount("-25")))

	batch, err := o.SettleDebt(ctx, f.group.ID, f.users["Bob"], Request{Amount: amount("25")})
	require.NoError(t, err)
	require.Len(t, batch, 1)
	assert.Equal(t, f.users["Bob"], batch[0].UserID)
	assert.Equal(t, StrategyDirect, batch[0].Strategy)
	assert.Equal(t, f.users["Bob"], batch[0].CreatedBy)

	assert.True(t, f.balance(t, "Bob").IsZero())
	assert.True(t, f.balance(t, "Alice").Equal(amount("25")), "settling does not move the creditor")

	_, err = o.SettleDebt(ctx, f.group.ID, f.users["Bob"], Request{Amount: amount("1")})
	assert.Equal(t, ledgererr.NotInDebt, ledgererr.CodeOf(err))

	assert.Equal(t, []string{"Direct:ok", "Direct:NotInDebt"}, rec.outcomes)
}

func TestSettleDirectRejections(t *testing.T) {
	f := newFixture(t, []string{"Alice", "Bob"}, "Alice", "30", "Bob", "20")
	o := New(f.store, locks.NewLocal())
	ctx := context.Background()
	// Alice +5, Bob -5

	mallory := &models.User{Name: "Mallory"}
	require.NoError(t, f.store.CreateUser(ctx, mallory))
	f.users["Mallory"] = mallory.ID

	tests := []struct {
		name    string
		settler string
		req     Request
		want    ledgererr.Code
	}{
		{"creditor cannot settle", "Alice", Request{Amount: amount("1")}, ledgererr.NotInDebt},
		{"more than owed", "Bob", Request{Amount: amount("20")}, ledgererr.AmountExceedsDebt},
		{"zero amount", "Bob", Request{Amount: decimal.Zero}, ledgererr.NonPositiveAmount},
		{"sub-cent amount", "Bob", Request{Amount: amount("1.005")}, ledgererr.AmountPrecision},
		{"unknown strategy", "Bob", Request{Strategy: "Halves"}, ledgererr.InvalidStrategy},
		{"not a member", "Mallory", Request{Amount: amount("1")}, ledgererr.InvalidReference},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := o.SettleDebt(ctx, f.group.ID, f.users[tt.settler], tt.req)
			require.Error(t, err)
			assert.Equal(t, tt.want, ledgererr.CodeOf(err))
		})
	}

	assert.Empty(t, f.settlements(t), "rejected requests must not write")

	_, err := o.SettleDebt(ctx, "missing", f.users["Bob"], Request{Amount: amount("1")})
	assert.Equal(t, ledgererr.NotFound, ledgererr.CodeOf(err))
}

func TestSettleDirectExactDebtAtLimit(t *testing.T) {
	f := newFixture(t, []string{"Alice", "Bob", "Carol"}, "Alice", "100")
	o := New(f.store, locks.NewLocal())

	// Bob owes 33.33 after rounding.
	_, err := o.SettleDebt(context.Background(), f.group.ID, f.users["Bob"], Request{Amount: amount("33.34")})
	assert.Equal(t, ledgererr.AmountExceedsDebt, ledgererr.CodeOf(err))

	_, err = o.SettleDebt(context.Background(), f.group.ID, f.users["Bob"], Request{Amount: amount("33.33")})
	require.NoError(t, err)
	assert.True(t, f.balance(t, "Bob").IsZero())
}

func TestSettleStrategies(t *testing.T) {
	// Alice +60, Bob -30, Carol -30: outstanding debt is 60.
	names := []string{"Alice", "Bob", "Carol"}

	t.Run("equally", func(t *testing.T) {
		f := newFixture(t, names, "Alice", "90")
		o := New(f.store, locks.NewLocal())

		batch, err := o.SettleDebt(context.Background(), f.group.ID, f.users["Bob"], Request{Strategy: "Equally"})
		require.NoError(t, err)
		require.Len(t, batch, 3)
		for _, st := range batch {
			assert.True(t, st.Amount.Equal(amount("20")), "got %s", st.Amount)
			assert.Equal(t, batch[0].BatchID, st.BatchID)
			assert.Equal(t, "Equally", st.Strategy)
		}
		assert.Len(t, f.settlements(t), 3)
	})

	t.Run("percentage", func(t *testing.T) {
		f := newFixture(t, names, "Alice", "90")
		o := New(f.store, locks.NewLocal())

		batch, err := o.SettleDebt(context.Background(), f.group.ID, f.users["Carol"], Request{
			Strategy: "percentage",
			Percentages: map[string]decimal.Decimal{
				f.users["Alice"]: amount("0"),
				f.users["Bob"]:   amount("50"),
				f.users["Carol"]: amount("50"),
			},
		})
		require.NoError(t, err)
		require.Len(t, batch, 2, "zero allocations are not written")
		assert.True(t, f.balance(t, "Bob").IsZero())
		assert.True(t, f.balance(t, "Carol").IsZero())
	})

	t.Run("percentage missing member writes nothing", func(t *testing.T) {
		f := newFixture(t, names, "Alice", "90")
		o := New(f.store, locks.NewLocal())

		_, err := o.SettleDebt(context.Background(), f.group.ID, f.users["Bob"], Request{
			Strategy: "Percentage",
			Percentages: map[string]decimal.Decimal{
				f.users["Bob"]:   amount("50"),
				f.users["Carol"]: amount("50"),
			},
		})
		assert.Equal(t, ledgererr.MissingParticipant, ledgererr.CodeOf(err))
		assert.Empty(t, f.settlements(t))
	})

	t.Run("dynamic", func(t *testing.T) {
		f := newFixture(t, names, "Alice", "90")
		o := New(f.store, locks.NewLocal())

		batch, err := o.SettleDebt(context.Background(), f.group.ID, f.users["Bob"], Request{
			Strategy: "Dynamic",
			Amounts: map[string]decimal.Decimal{
				f.users["Bob"]:   amount("30"),
				f.users["Carol"]: amount("30"),
			},
		})
		require.NoError(t, err)
		assert.Len(t, batch, 2)
		assert.True(t, f.balance(t, "Alice").Equal(amount("60")))
		assert.True(t, f.balance(t, "Bob").IsZero())
	})

	t.Run("dynamic mismatch writes nothing", func(t *testing.T) {
		f := newFixture(t, names, "Alice", "90")
		o := New(f.store, locks.NewLocal())

		_, err := o.SettleDebt(context.Background(), f.group.ID, f.users["Bob"], Request{
			Strategy: "Dynamic",
			Amounts:  map[string]decimal.Decimal{f.users["Bob"]: amount("30")},
		})
		assert.Equal(t, ledgererr.AmountMismatch, ledgererr.CodeOf(err))
		assert.Empty(t, f.settlements(t))
	})

	t.Run("nothing outstanding", func(t *testing.T) {
		f := newFixture(t, names)
		o := New(f.store, locks.NewLocal())

		_, err := o.SettleDebt(context.Background(), f.group.ID, f.users["Bob"], Request{Strategy: "Equally"})
		assert.Equal(t, ledgererr.NothingToSettle, ledgererr.CodeOf(err))
	})
}

func TestSettleConcurrentRequestsDoNotOverpay(t *testing.T) {
	f := newFixture(t, []string{"Alice", "Bob"}, "Alice", "50")
	o := New(f.store, locks.NewLocal())

	const n = 8
	errs := make([]error, n)
	var wg sync.WaitGroup
	for i := range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, errs[i] = o.SettleDebt(context.Background(), f.group.ID, f.users["Bob"], Request{Amount: amount("25")})
		}()
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		assert.Equal(t, ledgererr.NotInDebt, ledgererr.CodeOf(err))
	}
	assert.Equal(t, 1, succeeded)
	assert.Len(t, f.settlements(t), 1)
	assert.True(t, f.balance(t, "Bob").IsZero())
}

// racingStore records an expense right after each snapshot, as a writer that
// does not take the group lock would.
type racingStore struct {
	storage.Store
	payerID string
}

func (s *racingStore) LoadLedger(ctx context.Context, groupID string) (*storage.Ledger, error) {
	ledger, err := s.Store.LoadLedger(ctx, groupID)
	if err != nil {
		return nil, err
	}
	err = s.Store.CreateTransaction(ctx, &models.Transaction{
		GroupID: groupID, PayerID: s.payerID, Title: "late", Amount: amount("10"),
	})
	return ledger, err
}

func TestSettleRevalidatesBeforeCommit(t *testing.T) {
	f := newFixture(t, []string{"Alice", "Bob"}, "Alice", "50")
	o := New(&racingStore{Store: f.store, payerID: f.users["Alice"]}, locks.NewLocal())

	_, err := o.SettleDebt(context.Background(), f.group.ID, f.users["Bob"], Request{Amount: amount("25")})
	assert.Equal(t, ledgererr.LedgerChanged, ledgererr.CodeOf(err))
	assert.Empty(t, f.settlements(t))
}

func TestSettleDynamicRejectsSubCentAmounts(t *testing.T) {
	f := newFixture(t, []string{"Alice", "Bob"}, "Alice", "80")
	o := New(f.store, locks.NewLocal())
	// Bob owes 40.00

	_, err := o.SettleDebt(context.Background(), f.group.ID, f.users["Bob"], Request{
		Strategy: "Dynamic",
		Amounts: map[string]decimal.Decimal{
			f.users["Alice"]: amount("10.005"),
			f.users["Bob"]:   amount("29.995"),
		},
	})
	require.Error(t, err)
	assert.Equal(t, ledgererr.AmountPrecision, ledgererr.CodeOf(err))
	assert.Empty(t, f.settlements(t))
	assert.Equal(t, "-40.00", models.Format(f.balance(t, "Bob")))
}
