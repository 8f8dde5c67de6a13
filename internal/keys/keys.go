// Package keys owns the cache key layout for sessions.
//
// Every session maps to a deterministic, collision-free slice of the key
// namespace derived from its id:
//
//	sessions_<id>_state  - snapshot counter (decimal ASCII, required by INCR)
//	sessions_<id>_sess   - session record envelope (version, token, payload)
//	sessions_<id>_00000  - zero-padded snapshot buckets
//
// External code MUST NOT write under the "sessions_" prefix. Foreign writes
// are indistinguishable from corruption and make sessions unreadable.
package keys

import (
	"fmt"
	"strconv"
)

const (
	// Counter is the per-session snapshot counter subkey.
	Counter = "state"
	// Session is the session record subkey.
	Session = "sess"
	// lock is the per-session lock subkey.
	lock = "lock"

	prefixFormat = "sessions_%s_"
	stateWidth   = 5
)

// Prefix returns the key prefix owned by one session.
func Prefix(sessionID string) string {
	return fmt.Sprintf(prefixFormat, sessionID)
}

// State returns the zero-padded snapshot subkey for a state id.
// Ids wider than the pad simply grow; buckets stay unique either way.
func State(stateID uint64) string {
	return fmt.Sprintf("%0*d", stateWidth, stateID)
}

// Lock returns the full lock key for a session.
func Lock(sessionID string) string {
	return Prefix(sessionID) + lock
}

// FormatCounter renders a counter value the way the backends store it.
func FormatCounter(v uint64) []byte {
	return strconv.AppendUint(nil, v, 10)
}

// ParseCounter parses a stored counter value.
func ParseCounter(b []byte) (uint64, error) {
	v, err := strconv.ParseUint(string(b), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("keys: counter parse: %w", err)
	}
	return v, nil
}
