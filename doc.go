// Package sessionstore implements a session-state protocol on top of a
// flat, expiring key/value cache: many processes, many threads, one shared
// backend, and still a coherent per-user session with multiple retained
// state snapshots (back button, concurrent tabs).
//
// Components:
//   - cache.Client: byte store with TTL, atomic increment, multi-key
//     get/set, flush, and a distributed lock (Redis, BigCache, Ristretto).
//   - codec.Codec: (de)serializes the session record envelope. Application
//     state stays opaque []byte; bring your own object-graph serializer.
//   - version manager: epoch stamp invalidating whole session generations
//     in O(1) at fetch time instead of a bulk delete.
//
// Keys (per session):
//
//	sessions_<id>_state  - snapshot counter
//	sessions_<id>_sess   - (version, secure token, session payload)
//	sessions_<id>_00000  - zero-padded snapshot buckets
//	sessions_<id>_lock   - per-session mutual exclusion
//
// Protocol per request:
//
//	lock, _ := store.GetLock(ctx, sid)        // serialize the whole cycle
//	snap, _ := store.Fetch(ctx, sid, stateID) // counter + record + snapshot
//	// ...mutate...
//	newID, _ := store.Store(ctx, sid, snap.LatestStateID, token, false, sess, state)
//	_ = lock.Release(ctx)
//
// The counter advances before the data write lands (no cross-key
// transaction exists), so LatestStateID is advisory: it signals that a
// newer snapshot exists, not that it is already readable. Nothing is
// retried internally; every failure is a terminal, typed outcome.
package sessionstore
