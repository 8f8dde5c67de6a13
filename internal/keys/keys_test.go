package keys

import "testing"

func TestPrefixIsPerSession(t *testing.T) {
	a := Prefix("1")
	b := Prefix("2")
	if a == b {
		t.Fatalf("prefixes must differ per session: %q vs %q", a, b)
	}
	if a != "sessions_1_" {
		t.Fatalf("unexpected prefix format: %q", a)
	}
}

func TestStatePadding(t *testing.T) {
	cases := []struct {
		id   uint64
		want string
	}{
		{0, "00000"},
		{1, "00001"},
		{42, "00042"},
		{99999, "99999"},
		{100000, "100000"}, // grows past the pad, still unique
	}
	for _, tc := range cases {
		if got := State(tc.id); got != tc.want {
			t.Fatalf("State(%d) = %q, want %q", tc.id, got, tc.want)
		}
	}
}

func TestCounterRoundTrip(t *testing.T) {
	for _, v := range []uint64{0, 1, 12345} {
		got, err := ParseCounter(FormatCounter(v))
		if err != nil {
			t.Fatalf("ParseCounter(%d): %v", v, err)
		}
		if got != v {
			t.Fatalf("counter round trip: got %d want %d", got, v)
		}
	}
	if _, err := ParseCounter([]byte("not-a-number")); err == nil {
		t.Fatalf("expected error for malformed counter")
	}
}
