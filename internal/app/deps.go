package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/mmynk/splitledger/internal/locks"
	"github.com/mmynk/splitledger/internal/observability"
	"github.com/mmynk/splitledger/internal/settlement"
	"github.com/mmynk/splitledger/internal/storage/sqlstore"
	"github.com/mmynk/splitledger/pkg/api/apiconnect"
)

// Deps are the long-lived components shared by the commands.
type Deps struct {
	Store        *sqlstore.Store
	Locker       locks.Locker
	Metrics      *observability.Metrics
	Orchestrator *settlement.Orchestrator

	redis *redis.Client
}

// OpenDeps connects the store and the settle lock described by cfg.
func OpenDeps(ctx context.Context, cfg *Config, logger *slog.Logger) (*Deps, error) {
	store, err := sqlstore.Open(ctx, cfg.StoreDriver, cfg.StoreDSN())
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	logger.Info("storage initialized", slog.String("driver", store.Driver()))

	d := &Deps{Store: store, Metrics: observability.NewMetrics(apiconnect.Procedures()...)}

	if cfg.RedisAddr != "" {
		d.redis = redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		if err := d.redis.Ping(ctx).Err(); err != nil {
			_ = d.Close()
			return nil, fmt.Errorf("redis ping: %w", err)
		}
		d.Locker = locks.NewRedis(d.redis, locks.RedisOptions{
			Expiry:     cfg.LockTTL,
			Tries:      cfg.LockTries,
			RetryDelay: cfg.LockRetryDelay,
		}, logger)
		logger.Info("settle lock uses redis", slog.String("addr", cfg.RedisAddr))
	} else {
		d.Locker = locks.NewLocal()
		logger.Info("settle lock is in-process")
	}

	d.Orchestrator = settlement.New(d.Store, d.Locker,
		settlement.WithRecorder(d.Metrics),
		settlement.WithLogger(logger),
	)
	return d, nil
}

// Close releases the store and the redis client.
func (d *Deps) Close() error {
	var errs []error
	if d.redis != nil {
		errs = append(errs, d.redis.Close())
	}
	if d.Store != nil {
		errs = append(errs, d.Store.Close())
	}
	return errors.Join(errs...)
}
