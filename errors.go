package sessionstore

import (
	"errors"
	"fmt"
)

// errCounterMissing marks an increment against a counter key that no longer
// exists: the session is gone, not merely slow.
var errCounterMissing = errors.New("state counter key missing")

// StorageError reports a cache mutation (or read round-trip) the backend did
// not acknowledge as successful. It is terminal for the operation; retry
// policy, if any, belongs to the caller. Under noreply, writes whose
// acknowledgement was suppressed can never raise it.
type StorageError struct {
	Op        string // "create", "delete", "store", "increment", "fetch", "flush"
	SessionID string
	Err       error
}

func (e *StorageError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("sessionstore: can't %s session %s: %v", e.Op, e.SessionID, e.Err)
	}
	return fmt.Sprintf("sessionstore: can't %s session %s", e.Op, e.SessionID)
}

func (e *StorageError) Unwrap() error { return e.Err }

// ExpirationError reports a fetch that could not reconstruct a coherent,
// current-epoch session/state triple: session never created, TTL-expired,
// snapshot evicted, or stamped with a previous epoch. The expected caller
// response is "start a new session", not retry.
type ExpirationError struct {
	SessionID string
	Reason    string
}

func (e *ExpirationError) Error() string {
	return fmt.Sprintf("sessionstore: session %s expired: %s", e.SessionID, e.Reason)
}

const (
	reasonNotFound     = "session not found"
	reasonStaleVersion = "invalid session version"
)
