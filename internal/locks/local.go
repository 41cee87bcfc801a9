package locks

import (
	"context"
	"sync"
)

// Local is an in-process Locker. It only serializes callers that share the
// same Local value, so it suits a single server instance.
type Local struct {
	mu    sync.Mutex
	locks map[string]*localLock
}

type localLock struct {
	ch   chan struct{} // holds one token while the lock is free
	refs int
}

// NewLocal creates an in-process Locker.
func NewLocal() *Local {
	return &Local{locks: make(map[string]*localLock)}
}

// WithLock waits for the lock on key, or for ctx to be done.
func (l *Local) WithLock(ctx context.Context, key string, fn func(ctx context.Context) error) error {
	lk := l.acquire(key)
	defer l.release(key, lk)

	select {
	case <-lk.ch:
	case <-ctx.Done():
		return ctx.Err()
	}
	defer func() { lk.ch <- struct{}{} }()

	return fn(ctx)
}

func (l *Local) acquire(key string) *localLock {
	l.mu.Lock()
	defer l.mu.Unlock()

	lk, ok := l.locks[key]
	if !ok {
		lk = &localLock{ch: make(chan struct{}, 1)}
		lk.ch <- struct{}{}
		l.locks[key] = lk
	}
	lk.refs++
	return lk
}

func (l *Local) release(key string, lk *localLock) {
	l.mu.Lock()
	defer l.mu.Unlock()

	lk.refs--
	if lk.refs == 0 {
		delete(l.locks, key)
	}
}
