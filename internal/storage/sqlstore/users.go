package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/mmynk/splitledger/internal/ledgererr"
	"github.com/mmynk/splitledger/internal/models"
)

// CreateUser persists a new user.
func (s *Store) CreateUser(ctx context.Context, user *models.User) error {
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	if user.CreatedAt == 0 {
		user.CreatedAt = time.Now().Unix()
	}

	_, err := s.conn().exec(ctx,
		"INSERT INTO users (id, name, created_at) VALUES (?, ?, ?)",
		user.ID, user.Name, user.CreatedAt,
	)
	if err != nil {
		return ledgererr.Storage("failed to insert user", err)
	}
	return nil
}

// GetUser retrieves a user by ID.
func (s *Store) GetUser(ctx context.Context, userID string) (*models.User, error) {
	return getUser(ctx, s.conn(), userID)
}

func getUser(ctx context.Context, c conn, userID string) (*models.User, error) {
	user := &models.User{}
	err := c.queryRow(ctx,
		"SELECT id, name, created_at FROM users WHERE id = ?",
		userID,
	).Scan(&user.ID, &user.Name, &user.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ledgererr.Reference(ledgererr.NotFound, "user_id", "user not found: %s", userID)
	}
	if err != nil {
		return nil, ledgererr.Storage("failed to get user", err)
	}
	return user, nil
}

// ListUsers returns all users ordered by name.
func (s *Store) ListUsers(ctx context.Context) ([]*models.User, error) {
	rows, err := s.conn().query(ctx, "SELECT id, name, created_at FROM users ORDER BY name, id")
	if err != nil {
		return nil, ledgererr.Storage("failed to list users", err)
	}
	return scanUsers(rows)
}

// ListAvailableUsers returns the users that are not members of the group.
func (s *Store) ListAvailableUsers(ctx context.Context, groupID string) ([]*models.User, error) {
	if _, err := s.GetGroup(ctx, groupID); err != nil {
		return nil, err
	}

	rows, err := s.conn().query(ctx,
		`SELECT id, name, created_at FROM users
		 WHERE id NOT IN (SELECT user_id FROM group_members WHERE group_id = ?)
		 ORDER BY name, id`,
		groupID,
	)
	if err != nil {
		return nil, ledgererr.Storage("failed to list available users", err)
	}
	return scanUsers(rows)
}

func scanUsers(rows *sql.Rows) ([]*models.User, error) {
	defer rows.Close()

	var users []*models.User
	for rows.Next() {
		user := &models.User{}
		if err := rows.Scan(&user.ID, &user.Name, &user.CreatedAt); err != nil {
			return nil, ledgererr.Storage("failed to scan user", err)
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, ledgererr.Storage("failed to iterate users", err)
	}
	return users, nil
}
