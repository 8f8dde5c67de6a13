package codec

import "fmt"

// Limit wraps another codec to enforce a maximum allowed envelope size at
// Decode time. Encode is forwarded to Inner unchanged. If MaxDecode <= 0,
// size limiting is disabled.
//
// Typical use: protect against oversized entries coming back from a shared
// cache another tenant may have written to.
type Limit struct {
	// Inner is the underlying codec being wrapped. It must be set.
	Inner Codec
	// MaxDecode is the maximum permitted length (in bytes) of the incoming
	// envelope. Longer inputs fail without invoking Inner.
	MaxDecode int
}

var _ Codec = Limit{}

func (c Limit) Encode(r Record) ([]byte, error) { return c.Inner.Encode(r) }

func (c Limit) Decode(b []byte) (Record, error) {
	if c.MaxDecode > 0 && len(b) > c.MaxDecode {
		return Record{}, fmt.Errorf("envelope too large: %d > %d", len(b), c.MaxDecode)
	}
	return c.Inner.Decode(b)
}
