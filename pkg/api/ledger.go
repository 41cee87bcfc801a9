package api

type CreateTransactionRequest struct {
	GroupID string `json:"groupId" validate:"required"`
	PayerID string `json:"payerId" validate:"required"`
	Title   string `json:"title" validate:"max=200"`
	Amount  string `json:"amount"`
}

type CreateTransactionResponse struct {
	Transaction *Transaction `json:"transaction"`
}

type ListTransactionsRequest struct {
	GroupID string `json:"groupId" validate:"required"`
}

type ListTransactionsResponse struct {
	Transactions []*Transaction `json:"transactions"`
}

type ListSettlementsRequest struct {
	GroupID string `json:"groupId" validate:"required"`
}

type ListSettlementsResponse struct {
	Settlements []*Settlement `json:"settlements"`
}

// SettleDebtRequest settles debt in a group on behalf of ViewerID.
//
// Strategy "Direct" (or empty) pays Amount towards the viewer's own debt.
// "Equally", "Percentage" and "Dynamic" split the group's outstanding debt
// across all members, using Percentages or Amounts keyed by user ID.
type SettleDebtRequest struct {
	GroupID     string            `json:"groupId" validate:"required"`
	ViewerID    string            `json:"viewerId" validate:"required"`
	Strategy    string            `json:"strategy"`
	Amount      string            `json:"amount,omitempty"`
	Percentages map[string]string `json:"percentages,omitempty"`
	Amounts     map[string]string `json:"amounts,omitempty"`
}

// SettleDebtResponse returns the written settlements and the viewer's new balance.
type SettleDebtResponse struct {
	Settlements []*Settlement `json:"settlements"`
	Balance     string        `json:"balance"`
}

type GetGroupBalancesRequest struct {
	GroupID string `json:"groupId" validate:"required"`
}

type GetGroupBalancesResponse struct {
	Balances           []*MemberBalance `json:"balances"`
	OutstandingDebt    string           `json:"outstandingDebt"`
	SuggestedTransfers []*Transfer      `json:"suggestedTransfers"`
}
