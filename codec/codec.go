// Package codec (de)serializes the session record envelope: the small tuple
// stored under a session's "sess" key. Application state and session
// payloads stay opaque []byte throughout; the object-graph serializer is the
// caller's business, not this package's.
package codec

// Record is the session-level tuple duplicated on every store: the epoch
// stamp the write was made under, the session's secure token, and the opaque
// session payload.
type Record struct {
	Version string `msgpack:"v" cbor:"1,keyasint" json:"v"`
	Token   string `msgpack:"t" cbor:"2,keyasint" json:"t"`
	Session []byte `msgpack:"s" cbor:"3,keyasint" json:"s,omitempty"`
}

// Codec encodes/decodes the session record to the bytes kept in the cache.
type Codec interface {
	Encode(Record) ([]byte, error)
	Decode([]byte) (Record, error)
}
