package apiconnect

import (
	"context"
	"net/http"
	"strings"

	"connectrpc.com/connect"

	"github.com/mmynk/splitledger/pkg/api"
)

// LedgerServiceName is the fully-qualified name of the LedgerService service.
const LedgerServiceName = "splitledger.v1.LedgerService"

// LedgerService procedure paths.
const (
	LedgerServiceCreateTransactionProcedure = "/splitledger.v1.LedgerService/CreateTransaction"
	LedgerServiceListTransactionsProcedure  = "/splitledger.v1.LedgerService/ListTransactions"
	LedgerServiceListSettlementsProcedure   = "/splitledger.v1.LedgerService/ListSettlements"
	LedgerServiceSettleDebtProcedure        = "/splitledger.v1.LedgerService/SettleDebt"
	LedgerServiceGetGroupBalancesProcedure  = "/splitledger.v1.LedgerService/GetGroupBalances"
)

// LedgerServiceHandler is implemented by the server.
type LedgerServiceHandler interface {
	CreateTransaction(context.Context, *connect.Request[api.CreateTransactionRequest]) (*connect.Response[api.CreateTransactionResponse], error)
	ListTransactions(context.Context, *connect.Request[api.ListTransactionsRequest]) (*connect.Response[api.ListTransactionsResponse], error)
	ListSettlements(context.Context, *connect.Request[api.ListSettlementsRequest]) (*connect.Response[api.ListSettlementsResponse], error)
	SettleDebt(context.Context, *connect.Request[api.SettleDebtRequest]) (*connect.Response[api.SettleDebtResponse], error)
	GetGroupBalances(context.Context, *connect.Request[api.GetGroupBalancesRequest]) (*connect.Response[api.GetGroupBalancesResponse], error)
}

// NewLedgerServiceHandler builds an HTTP handler for svc. The returned path
// is the prefix to mount it under.
func NewLedgerServiceHandler(svc LedgerServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = handlerOptions(opts)
	mux := http.NewServeMux()
	mux.Handle(LedgerServiceCreateTransactionProcedure, connect.NewUnaryHandler(LedgerServiceCreateTransactionProcedure, svc.CreateTransaction, opts...))
	mux.Handle(LedgerServiceListTransactionsProcedure, connect.NewUnaryHandler(LedgerServiceListTransactionsProcedure, svc.ListTransactions, opts...))
	mux.Handle(LedgerServiceListSettlementsProcedure, connect.NewUnaryHandler(LedgerServiceListSettlementsProcedure, svc.ListSettlements, opts...))
	mux.Handle(LedgerServiceSettleDebtProcedure, connect.NewUnaryHandler(LedgerServiceSettleDebtProcedure, svc.SettleDebt, opts...))
	mux.Handle(LedgerServiceGetGroupBalancesProcedure, connect.NewUnaryHandler(LedgerServiceGetGroupBalancesProcedure, svc.GetGroupBalances, opts...))
	return "/" + LedgerServiceName + "/", mux
}

// LedgerServiceClient calls a LedgerService.
type LedgerServiceClient interface {
	CreateTransaction(context.Context, *connect.Request[api.CreateTransactionRequest]) (*connect.Response[api.CreateTransactionResponse], error)
	ListTransactions(context.Context, *connect.Request[api.ListTransactionsRequest]) (*connect.Response[api.ListTransactionsResponse], error)
	ListSettlements(context.Context, *connect.Request[api.ListSettlementsRequest]) (*connect.Response[api.ListSettlementsResponse], error)
	SettleDebt(context.Context, *connect.Request[api.SettleDebtRequest]) (*connect.Response[api.SettleDebtResponse], error)
	GetGroupBalances(context.Context, *connect.Request[api.GetGroupBalancesRequest]) (*connect.Response[api.GetGroupBalancesResponse], error)
}

// NewLedgerServiceClient creates a client for the LedgerService at baseURL.
func NewLedgerServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) LedgerServiceClient {
	baseURL = strings.TrimRight(baseURL, "/")
	opts = clientOptions(opts)
	return &ledgerServiceClient{
		createTransaction: connect.NewClient[api.CreateTransactionRequest, api.CreateTransactionResponse](httpClient, baseURL+LedgerServiceCreateTransactionProcedure, opts...),
		listTransactions:  connect.NewClient[api.ListTransactionsRequest, api.ListTransactionsResponse](httpClient, baseURL+LedgerServiceListTransactionsProcedure, opts...),
		listSettlements:   connect.NewClient[api.ListSettlementsRequest, api.ListSettlementsResponse](httpClient, baseURL+LedgerServiceListSettlementsProcedure, opts...),
		settleDebt:        connect.NewClient[api.SettleDebtRequest, api.SettleDebtResponse](httpClient, baseURL+LedgerServiceSettleDebtProcedure, opts...),
		getGroupBalances:  connect.NewClient[api.GetGroupBalancesRequest, api.GetGroupBalancesResponse](httpClient, baseURL+LedgerServiceGetGroupBalancesProcedure, opts...),
	}
}

type ledgerServiceClient struct {
	createTransaction *connect.Client[api.CreateTransactionRequest, api.CreateTransactionResponse]
	listTransactions  *connect.Client[api.ListTransactionsRequest, api.ListTransactionsResponse]
	listSettlements   *connect.Client[api.ListSettlementsRequest, api.ListSettlementsResponse]
	settleDebt        *connect.Client[api.SettleDebtRequest, api.SettleDebtResponse]
	getGroupBalances  *connect.Client[api.GetGroupBalancesRequest, api.GetGroupBalancesResponse]
}

func (c *ledgerServiceClient) CreateTransaction(ctx context.Context, req *connect.Request[api.CreateTransactionRequest]) (*connect.Response[api.CreateTransactionResponse], error) {
	return c.createTransaction.CallUnary(ctx, req)
}

func (c *ledgerServiceClient) ListTransactions(ctx context.Context, req *connect.Request[api.ListTransactionsRequest]) (*connect.Response[api.ListTransactionsResponse], error) {
	return c.listTransactions.CallUnary(ctx, req)
}

func (c *ledgerServiceClient) ListSettlements(ctx context.Context, req *connect.Request[api.ListSettlementsRequest]) (*connect.Response[api.ListSettlementsResponse], error) {
	return c.listSettlements.CallUnary(ctx, req)
}

func (c *ledgerServiceClient) SettleDebt(ctx context.Context, req *connect.Request[api.SettleDebtRequest]) (*connect.Response[api.SettleDebtResponse], error) {
	return c.settleDebt.CallUnary(ctx, req)
}

func (c *ledgerServiceClient) GetGroupBalances(ctx context.Context, req *connect.Request[api.GetGroupBalancesRequest]) (*connect.Response[api.GetGroupBalancesResponse], error) {
	return c.getGroupBalances.CallUnary(ctx, req)
}
