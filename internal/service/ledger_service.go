package service

import (
	"context"
	"log/slog"
	"strings"

	"connectrpc.com/connect"

	"github.com/mmynk/splitledger/internal/calculator"
	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/settlement"
	"github.com/mmynk/splitledger/internal/storage"
	"github.com/mmynk/splitledger/pkg/api"
	"github.com/mmynk/splitledger/pkg/api/apiconnect"
)

var _ apiconnect.LedgerServiceHandler = (*LedgerService)(nil)

// Settler records settlements. *settlement.Orchestrator implements it.
type Settler interface {
	SettleDebt(ctx context.Context, groupID, settlerID string, req settlement.Request) ([]*models.Settlement, error)
}

// LedgerService implements the Connect LedgerService: expenses, settlements
// and balances of a group.
type LedgerService struct {
	store   storage.Store
	settler Settler
}

// NewLedgerService creates a new LedgerService.
func NewLedgerService(store storage.Store, settler Settler) *LedgerService {
	return &LedgerService{store: store, settler: settler}
}

// CreateTransaction records an expense paid by a group member.
func (s *LedgerService) CreateTransaction(ctx context.Context, req *connect.Request[api.CreateTransactionRequest]) (*connect.Response[api.CreateTransactionResponse], error) {
	slog.Info("CreateTransaction request received",
		"group_id", req.Msg.GroupID,
		"payer_id", req.Msg.PayerID,
		"amount", req.Msg.Amount,
	)

	if err := validateRequest(req.Msg); err != nil {
		return nil, connectError(err)
	}

	amount, err := models.ParseAmount("amount", req.Msg.Amount)
	if err != nil {
		return nil, connectError(err)
	}

	txn := &models.Transaction{
		GroupID: req.Msg.GroupID,
		PayerID: req.Msg.PayerID,
		Title:   req.Msg.Title,
		Amount:  amount,
	}
	if err := txn.Validate(); err != nil {
		return nil, connectError(err)
	}

	if err := s.store.CreateTransaction(ctx, txn); err != nil {
		slog.Warn("CreateTransaction failed", "group_id", txn.GroupID, "error", err)
		return nil, connectError(err)
	}

	slog.Info("Transaction created", "transaction_id", txn.ID, "group_id", txn.GroupID)

	return connect.NewResponse(&api.CreateTransactionResponse{Transaction: toAPITransaction(txn)}), nil
}

// ListTransactions returns a group's expenses, newest first.
func (s *LedgerService) ListTransactions(ctx context.Context, req *connect.Request[api.ListTransactionsRequest]) (*connect.Response[api.ListTransactionsResponse], error) {
	if err := validateRequest(req.Msg); err != nil {
		return nil, connectError(err)
	}

	txns, err := s.store.ListTransactions(ctx, req.Msg.GroupID)
	if err != nil {
		slog.Error("ListTransactions failed", "group_id", req.Msg.GroupID, "error", err)
		return nil, connectError(err)
	}

	out := make([]*api.Transaction, len(txns))
	for i, t := range txns {
		out[i] = toAPITransaction(t)
	}
	return connect.NewResponse(&api.ListTransactionsResponse{Transactions: out}), nil
}

// ListSettlements returns a group's settlements, newest first.
func (s *LedgerService) ListSettlements(ctx context.Context, req *connect.Request[api.ListSettlementsRequest]) (*connect.Response[api.ListSettlementsResponse], error) {
	if err := validateRequest(req.Msg); err != nil {
		return nil, connectError(err)
	}

	list, err := s.store.ListSettlements(ctx, req.Msg.GroupID)
	if err != nil {
		slog.Error("ListSettlements failed", "group_id", req.Msg.GroupID, "error", err)
		return nil, connectError(err)
	}
	return connect.NewResponse(&api.ListSettlementsResponse{Settlements: toAPISettlements(list)}), nil
}

// SettleDebt settles debt on behalf of the viewer and returns the written
// settlements together with the viewer's new balance.
func (s *LedgerService) SettleDebt(ctx context.Context, req *connect.Request[api.SettleDebtRequest]) (*connect.Response[api.SettleDebtResponse], error) {
	slog.Info("SettleDebt request received",
		"group_id", req.Msg.GroupID,
		"viewer_id", req.Msg.ViewerID,
		"strategy", req.Msg.Strategy,
		"amount", req.Msg.Amount,
	)

	if err := validateRequest(req.Msg); err != nil {
		return nil, connectError(err)
	}

	settleReq, err := toSettleRequest(req.Msg)
	if err != nil {
		return nil, connectError(err)
	}

	batch, err := s.settler.SettleDebt(ctx, req.Msg.GroupID, req.Msg.ViewerID, settleReq)
	if err != nil {
		return nil, connectError(err)
	}

	ledger, err := s.store.LoadLedger(ctx, req.Msg.GroupID)
	if err != nil {
		return nil, connectError(err)
	}
	balance := calculator.ComputeBalance(ledger.Input(), req.Msg.ViewerID)

	return connect.NewResponse(&api.SettleDebtResponse{
		Settlements: toAPISettlements(batch),
		Balance:     models.Format(balance),
	}), nil
}

// GetGroupBalances returns every member's balance breakdown.
func (s *LedgerService) GetGroupBalances(ctx context.Context, req *connect.Request[api.GetGroupBalancesRequest]) (*connect.Response[api.GetGroupBalancesResponse], error) {
	slog.Info("GetGroupBalances request received", "group_id", req.Msg.GroupID)

	if err := validateRequest(req.Msg); err != nil {
		return nil, connectError(err)
	}

	ledger, names, err := loadLedgerWithNames(ctx, s.store, req.Msg.GroupID)
	if err != nil {
		slog.Error("GetGroupBalances failed", "group_id", req.Msg.GroupID, "error", err)
		return nil, connectError(err)
	}

	balances := calculator.ComputeBalances(ledger.Input())

	return connect.NewResponse(&api.GetGroupBalancesResponse{
		Balances:           toAPIBalances(balances, names),
		OutstandingDebt:    models.Format(calculator.OutstandingDebt(balances)),
		SuggestedTransfers: toAPITransfers(calculator.SimplifyDebts(balances)),
	}), nil
}

func toSettleRequest(msg *api.SettleDebtRequest) (settlement.Request, error) {
	req := settlement.Request{Strategy: msg.Strategy}

	if strings.TrimSpace(msg.Amount) != "" {
		amount, err := models.ParseAmount("amount", msg.Amount)
		if err != nil {
			return req, err
		}
		req.Amount = amount
	}

	var err error
	if req.Percentages, err = parseAmounts("percentages", msg.Percentages); err != nil {
		return req, err
	}
	if req.Amounts, err = parseAmounts("amounts", msg.Amounts); err != nil {
		return req, err
	}
	return req, nil
}
