package sqlstore

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mmynk/splitledger/internal/ledgererr"
	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/storage"
)

// CreateSettlements writes a batch of settlements atomically.
//
// The group's revision must still equal expected; the same statement advances
// it, so two commits computed from the same snapshot cannot both succeed.
func (s *Store) CreateSettlements(ctx context.Context, groupID string, expected storage.Version, settlements []*models.Settlement) error {
	if len(settlements) == 0 {
		return nil
	}

	now := time.Now().Unix()
	for _, st := range settlements {
		if st.ID == "" {
			st.ID = uuid.New().String()
		}
		if st.CreatedAt == 0 {
			st.CreatedAt = now
		}
		if st.GroupID == "" {
			st.GroupID = groupID
		}
		if st.GroupID != groupID {
			return ledgererr.Reference(ledgererr.InvalidReference, "group_id",
				"settlement %s belongs to group %s, not %s", st.ID, st.GroupID, groupID)
		}
	}

	return s.withTx(ctx, s.dialect.writeOpts, func(c conn) error {
		res, err := c.exec(ctx,
			"UPDATE groups SET revision = revision + 1 WHERE id = ? AND revision = ?",
			groupID, int64(expected),
		)
		if err != nil {
			return fmt.Errorf("failed to update group revision: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to update group revision: %w", err)
		}
		if n == 0 {
			if _, err := getGroup(ctx, c, groupID); err != nil {
				return err
			}
			return ledgererr.State(ledgererr.LedgerChanged, "group %s changed since its balances were read", groupID)
		}

		for _, st := range settlements {
			_, err := c.exec(ctx,
				`INSERT INTO settlements (id, group_id, user_id, amount, strategy, batch_id, created_by, created_at)
				 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
				st.ID, st.GroupID, st.UserID, st.Amount.String(), st.Strategy, st.BatchID, st.CreatedBy, st.CreatedAt,
			)
			if err != nil {
				return fmt.Errorf("failed to insert settlement: %w", err)
			}
		}
		return nil
	})
}

// ListSettlements returns a group's settlements, newest first.
func (s *Store) ListSettlements(ctx context.Context, groupID string) ([]*models.Settlement, error) {
	c := s.conn()
	if _, err := getGroup(ctx, c, groupID); err != nil {
		return nil, s.classify(err)
	}
	settlements, err := listSettlements(ctx, c, groupID)
	if err != nil {
		return nil, s.classify(err)
	}
	return settlements, nil
}

func listSettlements(ctx context.Context, c conn, groupID string) ([]*models.Settlement, error) {
	rows, err := c.query(ctx,
		`SELECT id, group_id, user_id, amount, strategy, batch_id, created_by, created_at
		 FROM settlements WHERE group_id = ?
		 ORDER BY created_at DESC, id DESC`,
		groupID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list settlements: %w", err)
	}
	defer rows.Close()

	settlements := []*models.Settlement{}
	for rows.Next() {
		st := &models.Settlement{}
		if err := rows.Scan(&st.ID, &st.GroupID, &st.UserID, &st.Amount, &st.Strategy, &st.BatchID, &st.CreatedBy, &st.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan settlement: %w", err)
		}
		settlements = append(settlements, st)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate settlements: %w", err)
	}
	return settlements, nil
}

// LoadLedger reads a group with its expenses, settlements and revision in
// one read transaction.
func (s *Store) LoadLedger(ctx context.Context, groupID string) (*storage.Ledger, error) {
	ledger := &storage.Ledger{}
	err := s.withTx(ctx, s.dialect.readOpts, func(c conn) error {
		group, revision, err := getGroupRevision(ctx, c, groupID)
		if err != nil {
			return err
		}
		ledger.Group = group
		ledger.Version = storage.Version(revision)

		if ledger.Transactions, err = listTransactions(ctx, c, groupID); err != nil {
			return err
		}
		ledger.Settlements, err = listSettlements(ctx, c, groupID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return ledger, nil
}
