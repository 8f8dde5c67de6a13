package sessionstore

import (
	"context"
	"time"

	"github.com/unkn0wn-root/sessionstore/cache"
	"github.com/unkn0wn-root/sessionstore/codec"
)

// Session is what Create hands back: a fresh session with its lock already
// held by the caller.
type Session struct {
	ID      string
	StateID uint64
	Token   string
	Lock    cache.Lock
}

// Snapshot is the result of a Fetch. LatestStateID is the counter's current
// value, not necessarily the requested state id - a higher value tells the
// caller a newer snapshot exists. It is advisory for navigation only: a
// concurrent writer may have advanced the counter before its data write
// landed.
type Snapshot struct {
	LatestStateID uint64
	Token         string
	SessionData   []byte
	StateData     []byte
}

// ResetPolicy selects what happens to previously stored sessions when the
// store is (re)constructed or reloaded.
type ResetPolicy string

const (
	// ResetOff accepts data from previous runs; the stamp is the raw
	// configured seed and never changes.
	ResetOff ResetPolicy = "off"
	// ResetInvalidate stamps writes with a fingerprint of the seed (or of
	// a generated id when no seed is given); old-epoch sessions are
	// rejected lazily at fetch time. Cheap: O(1) per fetch, no sweep.
	ResetInvalidate ResetPolicy = "invalidate"
	// ResetFlush deletes the whole session namespace on every reload.
	// Broader and more expensive than ResetInvalidate: TTL-resident
	// sessions disappear immediately.
	ResetFlush ResetPolicy = "flush"

	// resetOn is a legacy alias for ResetInvalidate.
	resetOn ResetPolicy = "on"
)

// Sessions is the session/state store protocol. Callers must hold the
// per-session lock (Create hands it out; GetLock re-acquires it) for the
// whole fetch->mutate->store cycle; the store performs no internal locking.
type Sessions interface {
	// Create allocates a session: counter=0, record=(version, token, no
	// payload), empty snapshot 0. The session's lock is acquired and
	// returned with it. Fails with *StorageError when the write is not
	// acknowledged.
	Create(ctx context.Context, sessionID, secureToken string) (Session, error)

	// Fetch reads the counter, the session record and the requested
	// snapshot in one multi-key read. Fails with *ExpirationError when
	// fewer than all three are present or the record's stamp is not the
	// current epoch.
	Fetch(ctx context.Context, sessionID string, stateID uint64) (Snapshot, error)

	// Store writes a snapshot and the session record. When useSameState
	// is false the counter is atomically advanced first and its new value
	// becomes the snapshot's id, returned to the caller. Fails with
	// *StorageError when the increment or the write is unacknowledged.
	Store(ctx context.Context, sessionID string, stateID uint64, secureToken string, useSameState bool, sessionData, stateData []byte) (uint64, error)

	// Delete removes the session record only; snapshots are unreachable
	// without it and are left to the cache TTL.
	Delete(ctx context.Context, sessionID string) error

	// GetLock acquires the session's mutual-exclusion lock. Fails with
	// cache.ErrLockTimeout under contention - distinct from both error
	// types above.
	GetLock(ctx context.Context, sessionID string) (cache.Lock, error)

	// FlushAll unconditionally clears every session in the namespace.
	FlushAll(ctx context.Context) error

	// Reload re-applies the reset policy: recompute the epoch stamp
	// (invalidate) or flush the namespace (flush). Concurrent Fetch/Store
	// calls observe either the old or the new stamp, never a torn value.
	Reload(ctx context.Context) error

	// Version returns the current epoch stamp, for logging/diagnostics.
	Version() string

	// Close releases the backend.
	Close(ctx context.Context) error
}

// Options tune the store. Only Cache is required; others have the defaults
// the protocol shipped with.
type Options struct {
	// Required
	Cache cache.Client

	Codec  codec.Codec // nil => codec.Msgpack{}
	Logger Logger      // nil => NopLogger
	Hooks  Hooks       // nil => NopHooks

	TTL             time.Duration // sessions and snapshots; 0 = never expire by time
	LockTTL         time.Duration // 0 = lock never auto-releases
	LockPollTime    time.Duration // 0 => 100ms
	LockMaxWaitTime time.Duration // 0 => 5s

	// Noreply makes every write fire-and-forget: lower latency, but write
	// failures become unobservable and StorageError can no longer be
	// raised for them. A trade-off for operators, not a default.
	Noreply bool

	// ResetOnReload picks the invalidation scheme; "" => ResetInvalidate.
	// The legacy "on" spelling is accepted as ResetInvalidate. Anything
	// else is a construction error.
	ResetOnReload ResetPolicy

	// Version is an optional fixed seed for the epoch stamp. With the
	// same seed every process (and every reload) computes the same stamp,
	// so a coordinated rolling restart invalidates nothing. Leave empty
	// to invalidate on every reload.
	Version string
}

// New builds a Sessions store and applies the reset policy once: computing
// the initial epoch stamp, or flushing the namespace under ResetFlush.
func New(opts Options) (Sessions, error) {
	return newSessions(opts)
}
