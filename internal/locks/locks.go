// Package locks serializes operations that must not interleave for the same
// key, such as two settlements in one group.
package locks

import (
	"context"
	"fmt"
)

// Locker runs fn while holding the lock for key.
type Locker interface {
	WithLock(ctx context.Context, key string, fn func(ctx context.Context) error) error
}

// GroupSettleKey builds the lock key for settlements in a group.
func GroupSettleKey(groupID string) string {
	return fmt.Sprintf("splitledger:group:%s:settle", groupID)
}
