// Package settlement records payments that reduce what group members owe.
//
// A settle request runs four steps under the group's lock:
//
//  1. Fetch: load a snapshot of the group ledger.
//  2. Validate: check the settler and, for a direct payment, their debt.
//  3. Resolve: turn the request into per-member amounts.
//  4. Commit: write every settlement in one store transaction, guarded by the
//     snapshot's revision.
//
// Nothing is written unless all four steps succeed.
package settlement

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mmynk/splitledger/internal/calculator"
	"github.com/mmynk/splitledger/internal/ledgererr"
	"github.com/mmynk/splitledger/internal/locks"
	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/storage"
)

// StrategyDirect settles an explicit amount for the settler alone.
const StrategyDirect = "Direct"

// Request describes one settle operation.
type Request struct {
	// Strategy is StrategyDirect or one of the calculator strategies.
	// Empty means StrategyDirect.
	Strategy string

	// Amount is the payment for StrategyDirect.
	Amount decimal.Decimal

	// Percentages per member for Percentage.
	Percentages map[string]decimal.Decimal

	// Amounts per member for Dynamic.
	Amounts map[string]decimal.Decimal
}

// Recorder receives settlement outcomes. observability.Metrics implements it.
type Recorder interface {
	ObserveSettlement(strategy, outcome string, amount decimal.Decimal)
}

// Orchestrator validates and records settlements.
type Orchestrator struct {
	store    storage.Store
	locker   locks.Locker
	recorder Recorder
	logger   *slog.Logger
	now      func() time.Time
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithRecorder reports outcomes to r.
func WithRecorder(r Recorder) Option {
	return func(o *Orchestrator) { o.recorder = r }
}

// WithLogger sets the logger. The default is slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(o *Orchestrator) { o.logger = l }
}

// WithClock overrides time.Now for settlement timestamps.
func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) { o.now = now }
}

// New creates an Orchestrator.
func New(store storage.Store, locker locks.Locker, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		store:  store,
		locker: locker,
		logger: slog.Default(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// SettleDebt records the settlements described by req on behalf of settlerID
// and returns them.
//
// Direct requests require the settler to owe money (NotInDebt otherwise) and
// may not pay more than they owe (AmountExceedsDebt). Strategy requests split
// the group's outstanding debt among all members. Either way the write is
// all-or-nothing.
func (o *Orchestrator) SettleDebt(ctx context.Context, groupID, settlerID string, req Request) ([]*models.Settlement, error) {
	strategy, err := normalizeStrategy(req.Strategy)
	if err != nil {
		o.observe("invalid", err, decimal.Zero)
		return nil, err
	}

	var batch []*models.Settlement
	err = o.locker.WithLock(ctx, locks.GroupSettleKey(groupID), func(ctx context.Context) error {
		ledger, err := o.store.LoadLedger(ctx, groupID)
		if err != nil {
			return err
		}
		if !ledger.Group.HasMember(settlerID) {
			return ledgererr.Reference(ledgererr.InvalidReference, "viewer_id",
				"user %s is not a member of group %s", settlerID, groupID)
		}

		split, err := o.plan(ledger, settlerID, strategy, req)
		if err != nil {
			return err
		}

		batch = o.build(groupID, settlerID, strategy, split)
		if len(batch) == 0 {
			return ledgererr.State(ledgererr.NothingToSettle, "request settles nothing in group %s", groupID)
		}
		return o.store.CreateSettlements(ctx, groupID, ledger.Version, batch)
	})

	total := decimal.Zero
	if err == nil {
		for _, st := range batch {
			total = total.Add(st.Amount)
		}
	}
	o.observe(strategy, err, total)

	if err != nil {
		o.logger.Warn("settlement rejected",
			"group_id", groupID,
			"settler_id", settlerID,
			"strategy", strategy,
			"error", err,
		)
		return nil, err
	}

	o.logger.Info("settlement recorded",
		"group_id", groupID,
		"settler_id", settlerID,
		"strategy", strategy,
		"count", len(batch),
		"total", models.Format(total),
	)
	return batch, nil
}

// plan validates the request against the snapshot and returns the amounts to settle.
func (o *Orchestrator) plan(ledger *storage.Ledger, settlerID, strategy string, req Request) (calculator.Split, error) {
	input := ledger.Input()

	if strategy == StrategyDirect {
		if err := models.ValidateAmount("amount", req.Amount); err != nil {
			return nil, err
		}
		balance := calculator.ComputeBalance(input, settlerID)
		if !balance.IsNegative() {
			return nil, ledgererr.State(ledgererr.NotInDebt,
				"user %s has a balance of %s and owes nothing", settlerID, models.Format(balance))
		}
		if req.Amount.GreaterThan(balance.Neg()) {
			return nil, ledgererr.State(ledgererr.AmountExceedsDebt,
				"amount %s exceeds the debt of %s", models.Format(req.Amount), models.Format(balance.Neg()))
		}
		return calculator.Split{{UserID: settlerID, Amount: req.Amount}}, nil
	}

	policy, err := calculator.NewPolicy(calculator.Strategy(strategy), req.Percentages, req.Amounts)
	if err != nil {
		return nil, err
	}
	outstanding := calculator.OutstandingDebt(calculator.ComputeBalances(input))
	if !outstanding.IsPositive() {
		return nil, ledgererr.State(ledgererr.NothingToSettle, "group %s has no outstanding debt", ledger.Group.ID)
	}
	return calculator.ResolveSplit(policy, outstanding, ledger.Group.Members)
}

// build turns a split into settlement rows sharing one batch ID.
// Zero allocations are skipped.
func (o *Orchestrator) build(groupID, settlerID, strategy string, split calculator.Split) []*models.Settlement {
	batchID := uuid.New().String()
	createdAt := o.now().Unix()

	batch := make([]*models.Settlement, 0, len(split))
	for _, a := range split {
		if a.Amount.IsZero() {
			continue
		}
		batch = append(batch, &models.Settlement{
			ID:        uuid.New().String(),
			GroupID:   groupID,
			UserID:    a.UserID,
			Amount:    a.Amount,
			Strategy:  strategy,
			BatchID:   batchID,
			CreatedBy: settlerID,
			CreatedAt: createdAt,
		})
	}
	return batch
}

func (o *Orchestrator) observe(strategy string, err error, amount decimal.Decimal) {
	if o.recorder == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = string(ledgererr.CodeOf(err))
		if outcome == "" {
			outcome = "error"
		}
	}
	o.recorder.ObserveSettlement(strategy, outcome, amount)
}

func normalizeStrategy(s string) (string, error) {
	if s = strings.TrimSpace(s); s == "" || strings.EqualFold(s, StrategyDirect) {
		return StrategyDirect, nil
	}
	st, err := calculator.ParseStrategy(s)
	if err != nil {
		return "", err
	}
	return string(st), nil
}
