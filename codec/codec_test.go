package codec

import (
	"bytes"
	"testing"
)

func TestEnvelopeRoundTrip(t *testing.T) {
	rec := Record{Version: "a1b2c3d4e5f60718", Token: "tok-42", Session: []byte("payload")}

	codecs := map[string]Codec{
		"msgpack": Msgpack{},
		"cbor":    MustCBOR(),
		"json":    JSON{},
	}
	for name, c := range codecs {
		b, err := c.Encode(rec)
		if err != nil {
			t.Fatalf("%s Encode: %v", name, err)
		}
		got, err := c.Decode(b)
		if err != nil {
			t.Fatalf("%s Decode: %v", name, err)
		}
		if got.Version != rec.Version || got.Token != rec.Token || !bytes.Equal(got.Session, rec.Session) {
			t.Fatalf("%s round trip mismatch: %+v", name, got)
		}
	}
}

func TestEmptySessionPayload(t *testing.T) {
	// Create writes a record with no session payload yet.
	b, err := Msgpack{}.Encode(Record{Version: "v", Token: "t"})
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	got, err := Msgpack{}.Decode(b)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(got.Session) != 0 {
		t.Fatalf("expected empty session payload, got %x", got.Session)
	}
}

func TestCorruptEnvelopeRejected(t *testing.T) {
	if _, err := (Msgpack{}).Decode([]byte{0xc1}); err == nil {
		t.Fatalf("expected decode error for corrupt msgpack input")
	}
}

func TestLimitRejectsOversized(t *testing.T) {
	c := Limit{Inner: Msgpack{}, MaxDecode: 4}
	b, err := c.Encode(Record{Version: "v", Token: "t", Session: []byte("large enough")})
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if len(b) <= 4 {
		t.Fatalf("test envelope unexpectedly small")
	}
	if _, err := c.Decode(b); err == nil {
		t.Fatalf("expected size-limit error")
	}

	// Disabled limit passes through.
	c.MaxDecode = 0
	if _, err := c.Decode(b); err != nil {
		t.Fatalf("Decode with disabled limit: %v", err)
	}
}
