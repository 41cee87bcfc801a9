// Package seed creates demo data for local development.
package seed

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/storage"
)

// Fixture holds the ids created by Demo.
type Fixture struct {
	Alice   string
	Bob     string
	Charlie string
	GroupID string
}

// Demo creates three users sharing a "Flatmates" group with two expenses:
// Alice paid 90.00 for groceries and Bob paid 30.00 for internet.
// Each call creates a fresh set of rows.
func Demo(ctx context.Context, store storage.Store) (*Fixture, error) {
	names := []string{"Alice", "Bob", "Charlie"}
	ids := make([]string, len(names))
	for i, name := range names {
		u := &models.User{Name: name}
		if err := store.CreateUser(ctx, u); err != nil {
			return nil, fmt.Errorf("create user %s: %w", name, err)
		}
		ids[i] = u.ID
	}

	group := &models.Group{Title: "Flatmates", Members: ids}
	if err := store.CreateGroup(ctx, group); err != nil {
		return nil, fmt.Errorf("create group: %w", err)
	}

	expenses := []struct {
		payer  string
		title  string
		amount decimal.Decimal
	}{
		{ids[0], "Groceries", decimal.NewFromInt(90)},
		{ids[1], "Internet", decimal.NewFromInt(30)},
	}
	for _, e := range expenses {
		txn := &models.Transaction{
			GroupID: group.ID,
			PayerID: e.payer,
			Title:   e.title,
			Amount:  e.amount,
		}
		if err := store.CreateTransaction(ctx, txn); err != nil {
			return nil, fmt.Errorf("create transaction %s: %w", e.title, err)
		}
	}

	return &Fixture{Alice: ids[0], Bob: ids[1], Charlie: ids[2], GroupID: group.ID}, nil
}
