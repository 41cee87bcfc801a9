package sqlstore

import (
	"context"
	"fmt"
)

// schema contains the SQL statements to set up the database schema.
// They run on startup to ensure tables exist and are valid on both SQLite
// and PostgreSQL. Amounts are stored as exact decimal text.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    created_at BIGINT NOT NULL
)`,
	`CREATE TABLE IF NOT EXISTS groups (
    id TEXT PRIMARY KEY,
    title TEXT NOT NULL,
    revision BIGINT NOT NULL DEFAULT 0,
    created_at BIGINT NOT NULL
)`,
	`CREATE TABLE IF NOT EXISTS group_members (
    group_id TEXT NOT NULL REFERENCES groups(id) ON DELETE CASCADE,
    user_id TEXT NOT NULL REFERENCES users(id),
    position BIGINT NOT NULL,
    joined_at BIGINT NOT NULL,
    PRIMARY KEY (group_id, user_id)
)`,
	`CREATE TABLE IF NOT EXISTS transactions (
    id TEXT PRIMARY KEY,
    group_id TEXT NOT NULL REFERENCES groups(id) ON DELETE CASCADE,
    payer_id TEXT NOT NULL REFERENCES users(id),
    title TEXT NOT NULL,
    amount TEXT NOT NULL,
    created_at BIGINT NOT NULL
)`,
	`CREATE TABLE IF NOT EXISTS settlements (
    id TEXT PRIMARY KEY,
    group_id TEXT NOT NULL REFERENCES groups(id) ON DELETE CASCADE,
    user_id TEXT NOT NULL REFERENCES users(id),
    amount TEXT NOT NULL,
    strategy TEXT NOT NULL,
    batch_id TEXT NOT NULL,
    created_by TEXT NOT NULL,
    created_at BIGINT NOT NULL
)`,
	`CREATE INDEX IF NOT EXISTS idx_group_members_user_id ON group_members(user_id)`,
	`CREATE INDEX IF NOT EXISTS idx_transactions_group_id ON transactions(group_id)`,
	`CREATE INDEX IF NOT EXISTS idx_settlements_group_id ON settlements(group_id)`,
	`CREATE INDEX IF NOT EXISTS idx_settlements_batch_id ON settlements(batch_id)`,
}

// runMigrations executes the schema statements one by one.
func (s *Store) runMigrations(ctx context.Context) error {
	for i, stmt := range schema {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}
	return nil
}
