// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"

	"github.com/mmynk/splitledger/internal/calculator"
	"github.com/mmynk/splitledger/internal/models"
)

// Version is a group's ledger revision. It increases with every write that
// can move a balance: membership changes, expenses and settlements.
type Version int64

// Ledger is a consistent snapshot of one group.
type Ledger struct {
	Group        *models.Group
	Transactions []*models.Transaction
	Settlements  []*models.Settlement
	Version      Version
}

// Input returns the snapshot in the shape the balance formula reads.
func (l *Ledger) Input() calculator.Ledger {
	return calculator.Ledger{
		Members:      l.Group.Members,
		Transactions: l.Transactions,
		Settlements:  l.Settlements,
	}
}

// Store defines the interface for ledger storage operations.
// This abstraction allows swapping storage backends (SQLite, PostgreSQL)
// without changing the service layer.
//
// Errors are *ledgererr.Error values: NotFound for missing groups and users,
// InvalidReference for ids outside a group, AlreadyMember and NotAMember for
// membership changes, LedgerChanged for a stale settlement commit, and
// StorageFailure for everything else.
type Store interface {
	// CreateUser persists a new user. ID and CreatedAt are filled in when empty.
	CreateUser(ctx context.Context, user *models.User) error

	// GetUser retrieves a user by ID.
	GetUser(ctx context.Context, userID string) (*models.User, error)

	// ListUsers returns all users ordered by name.
	ListUsers(ctx context.Context) ([]*models.User, error)

	// ListAvailableUsers returns the users that are not members of the group.
	ListAvailableUsers(ctx context.Context, groupID string) ([]*models.User, error)

	// CreateGroup persists a group together with its initial members.
	CreateGroup(ctx context.Context, group *models.Group) error

	// GetGroup retrieves a group with its members in join order.
	GetGroup(ctx context.Context, groupID string) (*models.Group, error)

	// ListGroups returns all groups, newest first.
	ListGroups(ctx context.Context) ([]*models.Group, error)

	// DeleteGroup removes a group with its memberships, transactions and settlements.
	DeleteGroup(ctx context.Context, groupID string) error

	// AddMember adds a user to a group.
	AddMember(ctx context.Context, groupID, userID string) error

	// RemoveMember removes a user from a group.
	RemoveMember(ctx context.Context, groupID, userID string) error

	// CreateTransaction persists an expense. The payer must be a group member.
	CreateTransaction(ctx context.Context, txn *models.Transaction) error

	// ListTransactions returns a group's expenses, newest first.
	ListTransactions(ctx context.Context, groupID string) ([]*models.Transaction, error)

	// ListSettlements returns a group's settlements, newest first.
	ListSettlements(ctx context.Context, groupID string) ([]*models.Settlement, error)

	// CreateSettlements writes all settlements in one transaction, or none.
	// The write is rejected with LedgerChanged if the group's version no
	// longer equals expected.
	CreateSettlements(ctx context.Context, groupID string, expected Version, settlements []*models.Settlement) error

	// LoadLedger reads a group, its transactions, settlements and version
	// from a single consistent snapshot.
	LoadLedger(ctx context.Context, groupID string) (*Ledger, error)

	// Close releases any resources held by the store.
	Close() error
}
