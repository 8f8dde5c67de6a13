// Package locks implements the per-key lock table used by the embedded
// cache backends. Semantics mirror a memcached-style add/delete lock: a
// holder that never releases is reclaimed after the lock TTL, and waiters
// poll at a fixed interval up to a bounded maximum wait.
package locks

import (
	"context"
	"sync"
	"time"

	"github.com/unkn0wn-root/sessionstore/cache"
)

type holder struct {
	token   uint64
	expires time.Time // zero => never expires
}

// Table is an in-process lock table. Safe for concurrent use.
type Table struct {
	mu   sync.Mutex
	held map[string]holder
	seq  uint64
}

func NewTable() *Table {
	return &Table{held: make(map[string]holder)}
}

// Acquire obtains the lock for key, waiting at most opts.MaxWait and polling
// every opts.PollInterval while contended. Returns cache.ErrLockTimeout when
// the wait window closes, or ctx.Err() when the context ends first.
func (t *Table) Acquire(ctx context.Context, key string, opts cache.LockOptions) (cache.Lock, error) {
	poll := opts.PollInterval
	if poll <= 0 {
		poll = 100 * time.Millisecond
	}
	deadline := time.Now().Add(opts.MaxWait)

	for {
		if tok, ok := t.tryAcquire(key, opts.TTL); ok {
			return &handle{t: t, key: key, token: tok}, nil
		}
		if opts.MaxWait <= 0 || !time.Now().Add(poll).Before(deadline) {
			return nil, cache.ErrLockTimeout
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(poll):
		}
	}
}

func (t *Table) tryAcquire(key string, ttl time.Duration) (uint64, bool) {
	now := time.Now()
	t.mu.Lock()
	defer t.mu.Unlock()

	if h, ok := t.held[key]; ok {
		if h.expires.IsZero() || now.Before(h.expires) {
			return 0, false
		}
		// expired holder; reclaim
		delete(t.held, key)
	}

	t.seq++
	h := holder{token: t.seq}
	if ttl > 0 {
		h.expires = now.Add(ttl)
	}
	t.held[key] = h
	return h.token, true
}

func (t *Table) release(key string, token uint64) {
	t.mu.Lock()
	if h, ok := t.held[key]; ok && h.token == token {
		delete(t.held, key)
	}
	t.mu.Unlock()
}

type handle struct {
	t     *Table
	key   string
	token uint64
}

var _ cache.Lock = (*handle)(nil)

// Release frees the lock. Releasing after TTL reclaim is a no-op: the token
// no longer matches, so a later holder is never kicked out by mistake.
func (h *handle) Release(context.Context) error {
	h.t.release(h.key, h.token)
	return nil
}
