package codec

import "encoding/json"

// JSON serializes records as JSON. Larger than Msgpack/CBOR but convenient
// when inspecting cache contents by hand.
type JSON struct{}

var _ Codec = JSON{}

func (JSON) Encode(r Record) ([]byte, error) { return json.Marshal(r) }

func (JSON) Decode(b []byte) (Record, error) {
	var r Record
	err := json.Unmarshal(b, &r)
	return r, err
}
