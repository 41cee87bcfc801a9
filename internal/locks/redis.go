package locks

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-redsync/redsync/v4"
	"github.com/go-redsync/redsync/v4/redis/goredis/v9"
	"github.com/redis/go-redis/v9"

	"github.com/mmynk/splitledger/internal/ledgererr"
)

// RedisOptions tune lock acquisition.
type RedisOptions struct {
	// Expiry bounds how long a crashed holder can block others.
	Expiry time.Duration
	// Tries is the number of acquisition attempts before giving up.
	Tries int
	// RetryDelay is the pause between attempts.
	RetryDelay time.Duration
}

// DefaultRedisOptions returns the options used when none are configured.
func DefaultRedisOptions() RedisOptions {
	return RedisOptions{
		Expiry:     10 * time.Second,
		Tries:      20,
		RetryDelay: 50 * time.Millisecond,
	}
}

// Redis is a Locker shared by every server instance using the same Redis.
type Redis struct {
	rs     *redsync.Redsync
	opts   RedisOptions
	logger *slog.Logger
}

// NewRedis creates a Redis-backed Locker.
func NewRedis(client *redis.Client, opts RedisOptions, logger *slog.Logger) *Redis {
	if logger == nil {
		logger = slog.Default()
	}
	return &Redis{
		rs:     redsync.New(goredis.NewPool(client)),
		opts:   opts,
		logger: logger,
	}
}

// WithLock acquires the lock on key, runs fn and releases the lock.
// It fails with LockBusy when the lock stays taken for all attempts.
func (r *Redis) WithLock(ctx context.Context, key string, fn func(ctx context.Context) error) error {
	mutex := r.rs.NewMutex(key,
		redsync.WithExpiry(r.opts.Expiry),
		redsync.WithTries(r.opts.Tries),
		redsync.WithRetryDelay(r.opts.RetryDelay),
	)

	if err := mutex.LockContext(ctx); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if isTaken(err) {
			return &ledgererr.Error{
				Kind:    ledgererr.KindState,
				Code:    ledgererr.LockBusy,
				Message: fmt.Sprintf("lock %s is held by another request", key),
				Err:     err,
			}
		}
		return ledgererr.Storage("failed to acquire lock", err)
	}

	defer func() {
		if ok, err := mutex.UnlockContext(context.WithoutCancel(ctx)); !ok || err != nil {
			r.logger.Warn("failed to release lock", "key", key, "unlock_ok", ok, "error", err)
		}
	}()

	return fn(ctx)
}

func isTaken(err error) bool {
	var taken *redsync.ErrTaken
	var takenVal redsync.ErrTaken
	return errors.Is(err, redsync.ErrFailed) || errors.As(err, &taken) || errors.As(err, &takenVal)
}
