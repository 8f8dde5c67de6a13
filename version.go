package sessionstore

import (
	"crypto/sha256"
	"encoding/hex"
	"sync/atomic"

	"github.com/google/uuid"
)

const stampWidth = 16 // hex chars; fixed width so stamps compare trivially

// versionManager owns the epoch stamp that distinguishes session data
// written by the current server generation from older, now-invalid data.
// The stamp changes only at construction and on reload; readers load it
// atomically, never a torn value.
type versionManager struct {
	policy ResetPolicy
	seed   string
	v      atomic.Value // string
}

func newVersionManager(policy ResetPolicy, seed string) *versionManager {
	m := &versionManager{policy: policy, seed: seed}
	// off/flush keep the raw seed as a constant stamp
	m.v.Store(seed)
	return m
}

func (m *versionManager) current() string {
	return m.v.Load().(string)
}

// reload recomputes the stamp per policy and reports whether the caller
// must flush the backing namespace instead.
func (m *versionManager) reload() (flush bool) {
	switch m.policy {
	case ResetInvalidate:
		seed := m.seed
		if seed == "" {
			seed = uuid.NewString()
		}
		m.v.Store(fingerprint(seed))
		return false
	case ResetFlush:
		return true
	default:
		return false
	}
}

// fingerprint derives the fixed-width epoch stamp from a seed. Equality is
// the only operation callers may rely on.
func fingerprint(seed string) string {
	sum := sha256.Sum256([]byte(seed))
	return hex.EncodeToString(sum[:])[:stampWidth]
}
