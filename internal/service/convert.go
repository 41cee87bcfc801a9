package service

import (
	"github.com/shopspring/decimal"

	"github.com/mmynk/splitledger/internal/calculator"
	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/pkg/api"
)

func toAPIUser(u *models.User) *api.User {
	return &api.User{ID: u.ID, Name: u.Name, CreatedAt: u.CreatedAt}
}

func toAPIUsers(users []*models.User) []*api.User {
	out := make([]*api.User, len(users))
	for i, u := range users {
		out[i] = toAPIUser(u)
	}
	return out
}

func toAPIGroup(g *models.Group) *api.Group {
	members := g.Members
	if members == nil {
		members = []string{}
	}
	return &api.Group{ID: g.ID, Title: g.Title, Members: members, CreatedAt: g.CreatedAt}
}

func toAPITransaction(t *models.Transaction) *api.Transaction {
	return &api.Transaction{
		ID:        t.ID,
		GroupID:   t.GroupID,
		PayerID:   t.PayerID,
		Title:     t.Title,
		Amount:    models.Format(t.Amount),
		CreatedAt: t.CreatedAt,
	}
}

func toAPISettlement(s *models.Settlement) *api.Settlement {
	return &api.Settlement{
		ID:        s.ID,
		GroupID:   s.GroupID,
		UserID:    s.UserID,
		Amount:    models.Format(s.Amount),
		Strategy:  s.Strategy,
		BatchID:   s.BatchID,
		CreatedBy: s.CreatedBy,
		CreatedAt: s.CreatedAt,
	}
}

func toAPISettlements(list []*models.Settlement) []*api.Settlement {
	out := make([]*api.Settlement, len(list))
	for i, s := range list {
		out[i] = toAPISettlement(s)
	}
	return out
}

func toAPIBalances(balances []calculator.MemberBalance, names map[string]string) []*api.MemberBalance {
	out := make([]*api.MemberBalance, len(balances))
	for i, b := range balances {
		out[i] = &api.MemberBalance{
			UserID:  b.UserID,
			Name:    names[b.UserID],
			Paid:    models.Format(b.Paid),
			Share:   models.Format(b.Share),
			Settled: models.Format(b.Settled),
			Balance: models.Format(b.Net),
		}
	}
	return out
}

func toAPITransfers(edges []calculator.DebtEdge) []*api.Transfer {
	out := make([]*api.Transfer, len(edges))
	for i, e := range edges {
		out[i] = &api.Transfer{From: e.From, To: e.To, Amount: models.Format(e.Amount)}
	}
	return out
}

// parseAmounts parses a user ID to decimal string map.
func parseAmounts(field string, in map[string]string) (map[string]decimal.Decimal, error) {
	if len(in) == 0 {
		return nil, nil
	}
	out := make(map[string]decimal.Decimal, len(in))
	for id, s := range in {
		d, err := models.ParseAmount(field+"."+id, s)
		if err != nil {
			return nil, err
		}
		out[id] = d
	}
	return out, nil
}
