package sessionstore

// Hooks are lightweight callbacks for high-signal protocol events.
// Implementations MUST be cheap and non-blocking; the store calls them on
// hot paths. Wrap with hooks/async to decouple slow sinks.
type Hooks interface {
	// A fetched record carried a stamp from a previous epoch.
	VersionMismatch(sessionID, stored, current string)

	// A fetch found fewer than the three keys of a coherent session.
	// present is how many were actually there.
	SessionMissing(sessionID string, present int)

	// A store tried to advance a counter key that no longer exists.
	CounterMissing(sessionID string)

	// A fire-and-forget write went out; its outcome is unobservable.
	// op ∈ {"create", "delete", "store", "increment"}
	NoreplyWrite(op, sessionID string)
}

// NopHooks is the default no-op.
type NopHooks struct{}

func (NopHooks) VersionMismatch(string, string, string) {}
func (NopHooks) SessionMissing(string, int)             {}
func (NopHooks) CounterMissing(string)                  {}
func (NopHooks) NoreplyWrite(string, string)            {}
