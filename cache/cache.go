// Package cache defines the key/value capability the session store is built
// on: a flat byte store with per-key TTL, atomic increment, multi-key
// get/set, delete, flush, and a distributed-lock primitive.
//
// Implementations MUST be byte-for-byte transparent: GetMulti must return
// exactly the same []byte previously passed to SetMulti for a key. Single-key
// operations are atomic; nothing is atomic across keys. The session protocol
// in the root package is designed around that gap.
package cache

import (
	"context"
	"errors"
	"time"
)

// ErrLockTimeout is returned by AcquireLock when the lock stayed contended
// for the whole MaxWait window. It signals contention, not data loss, and is
// deliberately distinct from the session-level error types.
var ErrLockTimeout = errors.New("cache: lock acquisition timed out")

// Lock is a held per-session mutual-exclusion token. Its lifetime belongs to
// the caller; the backend reclaims it after the lock TTL if never released.
type Lock interface {
	// Release frees the lock. Releasing an already-expired or reclaimed
	// lock is a no-op.
	Release(ctx context.Context) error
}

// LockOptions tune lock acquisition.
type LockOptions struct {
	// TTL auto-releases a lock whose holder never does (crash guard).
	// 0 means the lock never expires on its own.
	TTL time.Duration
	// PollInterval is the spin interval while contended.
	PollInterval time.Duration
	// MaxWait bounds acquisition; past it AcquireLock fails with
	// ErrLockTimeout instead of waiting forever.
	MaxWait time.Duration
	// Noreply requests fire-and-forget lock writes where the backend
	// supports them.
	Noreply bool
}

// Client is the cache capability consumed by the session store.
// Must be safe for concurrent use from any number of goroutines.
type Client interface {
	// GetMulti reads prefix+key for each key and returns only the entries
	// actually present. Missing keys are never an error; err is reserved
	// for transport/backend failures.
	GetMulti(ctx context.Context, prefix string, keys []string) (map[string][]byte, error)

	// SetMulti writes all entries under prefix with the given TTL
	// (ttl <= 0 means no time expiry). When noreply is set the write is
	// fire-and-forget: failures are unobservable by design.
	SetMulti(ctx context.Context, prefix string, entries map[string][]byte, ttl time.Duration, noreply bool) error

	// Incr atomically increments an existing decimal counter and returns
	// the new value. ok=false means the key does not exist; the counter is
	// never created implicitly. Under noreply the returned value may be
	// zero and unconfirmed.
	Incr(ctx context.Context, key string, noreply bool) (val uint64, ok bool, err error)

	// Delete removes a key. Deleting a missing key is a no-op, not an
	// error; err is reserved for transport/backend failures.
	Delete(ctx context.Context, key string, noreply bool) error

	// FlushAll clears every entry in the namespace this client owns.
	FlushAll(ctx context.Context) error

	// AcquireLock obtains the mutual-exclusion lock for key, waiting at
	// most opts.MaxWait. Fails with ErrLockTimeout on contention.
	AcquireLock(ctx context.Context, key string, opts LockOptions) (Lock, error)

	// Close releases resources.
	Close(ctx context.Context) error
}
