package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mmynk/splitledger/internal/ledgererr"
	"github.com/mmynk/splitledger/internal/models"
)

// CreateGroup persists a group together with its initial members.
// Every member must be an existing user; duplicates are ignored.
func (s *Store) CreateGroup(ctx context.Context, group *models.Group) error {
	if group.ID == "" {
		group.ID = uuid.New().String()
	}
	if group.CreatedAt == 0 {
		group.CreatedAt = time.Now().Unix()
	}

	return s.withTx(ctx, s.dialect.writeOpts, func(c conn) error {
		_, err := c.exec(ctx,
			"INSERT INTO groups (id, title, revision, created_at) VALUES (?, ?, 0, ?)",
			group.ID, group.Title, group.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to insert group: %w", err)
		}

		members := make([]string, 0, len(group.Members))
		seen := make(map[string]bool, len(group.Members))
		for _, userID := range group.Members {
			if seen[userID] {
				continue
			}
			seen[userID] = true
			if err := insertMember(ctx, c, group.ID, userID, group.CreatedAt); err != nil {
				return err
			}
			members = append(members, userID)
		}
		group.Members = members
		return nil
	})
}

// GetGroup retrieves a group with its members in join order.
func (s *Store) GetGroup(ctx context.Context, groupID string) (*models.Group, error) {
	group, err := getGroup(ctx, s.conn(), groupID)
	if err != nil {
		return nil, s.classify(err)
	}
	return group, nil
}

func getGroup(ctx context.Context, c conn, groupID string) (*models.Group, error) {
	group, _, err := getGroupRevision(ctx, c, groupID)
	return group, err
}

func getGroupRevision(ctx context.Context, c conn, groupID string) (*models.Group, int64, error) {
	group := &models.Group{}
	var revision int64
	err := c.queryRow(ctx,
		"SELECT id, title, revision, created_at FROM groups WHERE id = ?",
		groupID,
	).Scan(&group.ID, &group.Title, &revision, &group.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, 0, ledgererr.Reference(ledgererr.NotFound, "group_id", "group not found: %s", groupID)
	}
	if err != nil {
		return nil, 0, fmt.Errorf("failed to get group: %w", err)
	}

	group.Members, err = listMembers(ctx, c, groupID)
	if err != nil {
		return nil, 0, err
	}
	return group, revision, nil
}

func listMembers(ctx context.Context, c conn, groupID string) ([]string, error) {
	rows, err := c.query(ctx,
		"SELECT user_id FROM group_members WHERE group_id = ? ORDER BY position",
		groupID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get members: %w", err)
	}
	defer rows.Close()

	members := []string{}
	for rows.Next() {
		var userID string
		if err := rows.Scan(&userID); err != nil {
			return nil, fmt.Errorf("failed to scan member: %w", err)
		}
		members = append(members, userID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate members: %w", err)
	}
	return members, nil
}

// ListGroups returns all groups, newest first.
func (s *Store) ListGroups(ctx context.Context) ([]*models.Group, error) {
	c := s.conn()
	rows, err := c.query(ctx, "SELECT id FROM groups ORDER BY created_at DESC, id")
	if err != nil {
		return nil, ledgererr.Storage("failed to list groups", err)
	}

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return nil, ledgererr.Storage("failed to scan group", err)
		}
		ids = append(ids, id)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, ledgererr.Storage("failed to iterate groups", err)
	}

	// Rows are closed before loading members; SQLite runs on one connection.
	groups := make([]*models.Group, 0, len(ids))
	for _, id := range ids {
		group, err := getGroup(ctx, c, id)
		if err != nil {
			return nil, s.classify(err)
		}
		groups = append(groups, group)
	}
	return groups, nil
}

// DeleteGroup removes a group. Memberships, transactions and settlements go
// with it through ON DELETE CASCADE.
func (s *Store) DeleteGroup(ctx context.Context, groupID string) error {
	res, err := s.conn().exec(ctx, "DELETE FROM groups WHERE id = ?", groupID)
	if err != nil {
		return ledgererr.Storage("failed to delete group", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return ledgererr.Storage("failed to delete group", err)
	}
	if n == 0 {
		return ledgererr.Reference(ledgererr.NotFound, "group_id", "group not found: %s", groupID)
	}
	return nil
}

// AddMember adds a user to a group.
func (s *Store) AddMember(ctx context.Context, groupID, userID string) error {
	return s.withTx(ctx, s.dialect.writeOpts, func(c conn) error {
		if err := bumpRevision(ctx, c, groupID); err != nil {
			return err
		}
		return insertMember(ctx, c, groupID, userID, time.Now().Unix())
	})
}

func insertMember(ctx context.Context, c conn, groupID, userID string, joinedAt int64) error {
	if _, err := getUser(ctx, c, userID); err != nil {
		return err
	}

	exists, err := isMember(ctx, c, groupID, userID)
	if err != nil {
		return err
	}
	if exists {
		return ledgererr.State(ledgererr.AlreadyMember, "user %s is already a member of group %s", userID, groupID)
	}

	var position int64
	err = c.queryRow(ctx,
		"SELECT COALESCE(MAX(position), 0) + 1 FROM group_members WHERE group_id = ?",
		groupID,
	).Scan(&position)
	if err != nil {
		return fmt.Errorf("failed to get member position: %w", err)
	}

	_, err = c.exec(ctx,
		"INSERT INTO group_members (group_id, user_id, position, joined_at) VALUES (?, ?, ?, ?)",
		groupID, userID, position, joinedAt,
	)
	if c.d.isUniqueViolation(err) {
		return ledgererr.State(ledgererr.AlreadyMember, "user %s is already a member of group %s", userID, groupID)
	}
	if err != nil {
		return fmt.Errorf("failed to insert member: %w", err)
	}
	return nil
}

// RemoveMember removes a user from a group.
func (s *Store) RemoveMember(ctx context.Context, groupID, userID string) error {
	return s.withTx(ctx, s.dialect.writeOpts, func(c conn) error {
		if err := bumpRevision(ctx, c, groupID); err != nil {
			return err
		}

		res, err := c.exec(ctx,
			"DELETE FROM group_members WHERE group_id = ? AND user_id = ?",
			groupID, userID,
		)
		if err != nil {
			return fmt.Errorf("failed to delete member: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to delete member: %w", err)
		}
		if n == 0 {
			return ledgererr.State(ledgererr.NotAMember, "user %s is not a member of group %s", userID, groupID)
		}
		return nil
	})
}
