package codec

import "github.com/fxamacker/cbor/v2"

// CBOR serializes records using fxamacker/cbor with RFC 8949 core
// deterministic encoding, for installations that want byte-stable envelopes.
// The zero value is NOT ready to use; construct with NewCBOR or MustCBOR.
type CBOR struct {
	enc cbor.EncMode
	dec cbor.DecMode
}

var _ Codec = CBOR{}

func NewCBOR() (CBOR, error) {
	em, err := cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		return CBOR{}, err
	}
	dm, err := (cbor.DecOptions{}).DecMode()
	if err != nil {
		return CBOR{}, err
	}
	return CBOR{enc: em, dec: dm}, nil
}

// MustCBOR is like NewCBOR but panics on error. Handy for package-level
// variables in tests and examples.
func MustCBOR() CBOR {
	c, err := NewCBOR()
	if err != nil {
		panic(err)
	}
	return c
}

func (c CBOR) Encode(r Record) ([]byte, error) {
	return c.enc.Marshal(r)
}

func (c CBOR) Decode(b []byte) (Record, error) {
	var r Record
	err := c.dec.Unmarshal(b, &r)
	return r, err
}
