package locks

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/splitledger/internal/ledgererr"
)

// exercise runs n concurrent critical sections on one key and reports the
// highest number of them that ever overlapped.
func exercise(t *testing.T, l Locker, n int) int32 {
	t.Helper()

	var inside, peak atomic.Int32
	var wg sync.WaitGroup
	for range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := l.WithLock(context.Background(), GroupSettleKey("g1"), func(ctx context.Context) error {
				cur := inside.Add(1)
				for {
					old := peak.Load()
					if cur <= old || peak.CompareAndSwap(old, cur) {
						break
					}
				}
				time.Sleep(2 * time.Millisecond)
				inside.Add(-1)
				return nil
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()
	return peak.Load()
}

func TestLocalSerializes(t *testing.T) {
	l := NewLocal()
	assert.Equal(t, int32(1), exercise(t, l, 8))
	assert.Empty(t, l.locks, "lock entries must be dropped once unused")
}

func TestLocalDifferentKeysDoNotBlock(t *testing.T) {
	l := NewLocal()
	ctx := context.Background()

	err := l.WithLock(ctx, "a", func(ctx context.Context) error {
		done := make(chan error, 1)
		go func() {
			done <- l.WithLock(ctx, "b", func(context.Context) error { return nil })
		}()
		select {
		case err := <-done:
			return err
		case <-time.After(time.Second):
			return errors.New("lock on b blocked behind a")
		}
	})
	require.NoError(t, err)
}

func TestLocalHonoursContext(t *testing.T) {
	l := NewLocal()
	release := make(chan struct{})
	held := make(chan struct{})

	go func() {
		_ = l.WithLock(context.Background(), "k", func(context.Context) error {
			close(held)
			<-release
			return nil
		})
	}()
	<-held

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err := l.WithLock(ctx, "k", func(context.Context) error { return nil })
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	close(release)
}

func TestLocalReturnsFnError(t *testing.T) {
	boom := errors.New("boom")
	err := NewLocal().WithLock(context.Background(), "k", func(context.Context) error { return boom })
	assert.ErrorIs(t, err, boom)
}

func newTestRedis(t *testing.T, opts RedisOptions) (*Redis, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewRedis(client, opts, nil), mr
}

func TestRedisSerializes(t *testing.T) {
	l, _ := newTestRedis(t, RedisOptions{Expiry: 5 * time.Second, Tries: 500, RetryDelay: time.Millisecond})
	assert.Equal(t, int32(1), exercise(t, l, 5))
}

func TestRedisReleasesLock(t *testing.T) {
	l, mr := newTestRedis(t, DefaultRedisOptions())
	key := GroupSettleKey("g1")

	err := l.WithLock(context.Background(), key, func(context.Context) error {
		assert.True(t, mr.Exists(key), "lock key must exist while held")
		return nil
	})
	require.NoError(t, err)
	assert.False(t, mr.Exists(key), "lock key must be deleted on release")
}

func TestRedisBusy(t *testing.T) {
	l, mr := newTestRedis(t, RedisOptions{Expiry: 5 * time.Second, Tries: 2, RetryDelay: time.Millisecond})
	key := GroupSettleKey("g1")
	require.NoError(t, mr.Set(key, "someone-else"))

	called := false
	err := l.WithLock(context.Background(), key, func(context.Context) error {
		called = true
		return nil
	})
	require.Error(t, err)
	assert.False(t, called)
	assert.Equal(t, ledgererr.LockBusy, ledgererr.CodeOf(err))
}
