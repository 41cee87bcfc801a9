package sqlstore

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mmynk/splitledger/internal/ledgererr"
	"github.com/mmynk/splitledger/internal/models"
)

// CreateTransaction persists an expense. The payer must be a group member.
func (s *Store) CreateTransaction(ctx context.Context, txn *models.Transaction) error {
	if txn.ID == "" {
		txn.ID = uuid.New().String()
	}
	if txn.CreatedAt == 0 {
		txn.CreatedAt = time.Now().Unix()
	}

	return s.withTx(ctx, s.dialect.writeOpts, func(c conn) error {
		if err := bumpRevision(ctx, c, txn.GroupID); err != nil {
			return err
		}

		member, err := isMember(ctx, c, txn.GroupID, txn.PayerID)
		if err != nil {
			return err
		}
		if !member {
			return ledgererr.Reference(ledgererr.InvalidReference, "payer_id",
				"payer %s is not a member of group %s", txn.PayerID, txn.GroupID)
		}

		_, err = c.exec(ctx,
			`INSERT INTO transactions (id, group_id, payer_id, title, amount, created_at)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			txn.ID, txn.GroupID, txn.PayerID, txn.Title, txn.Amount.String(), txn.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to insert transaction: %w", err)
		}
		return nil
	})
}

// ListTransactions returns a group's expenses, newest first.
func (s *Store) ListTransactions(ctx context.Context, groupID string) ([]*models.Transaction, error) {
	c := s.conn()
	if _, err := getGroup(ctx, c, groupID); err != nil {
		return nil, s.classify(err)
	}
	txns, err := listTransactions(ctx, c, groupID)
	if err != nil {
		return nil, s.classify(err)
	}
	return txns, nil
}

func listTransactions(ctx context.Context, c conn, groupID string) ([]*models.Transaction, error) {
	rows, err := c.query(ctx,
		`SELECT id, group_id, payer_id, title, amount, created_at
		 FROM transactions WHERE group_id = ?
		 ORDER BY created_at DESC, id DESC`,
		groupID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	defer rows.Close()

	txns := []*models.Transaction{}
	for rows.Next() {
		t := &models.Transaction{}
		if err := rows.Scan(&t.ID, &t.GroupID, &t.PayerID, &t.Title, &t.Amount, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		txns = append(txns, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate transactions: %w", err)
	}
	return txns, nil
}

func isMember(ctx context.Context, c conn, groupID, userID string) (bool, error) {
	var exists bool
	err := c.queryRow(ctx,
		"SELECT EXISTS (SELECT 1 FROM group_members WHERE group_id = ? AND user_id = ?)",
		groupID, userID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check membership: %w", err)
	}
	return exists, nil
}
