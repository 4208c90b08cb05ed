package gameid

import "testing"

func TestParseRoundTrip(t *testing.T) {
	id := FromUint32(0xdeadbeef)
	if id.String() != "deadbeef" {
		t.Fatalf("got %q", id.String())
	}
	parsed, err := Parse("deadbeef")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if parsed != id {
		t.Fatalf("round trip mismatch: %v != %v", parsed, id)
	}
	if parsed.Uint32() != 0xdeadbeef {
		t.Fatalf("Uint32 = %x", parsed.Uint32())
	}
}

func TestParseRejectsBadInput(t *testing.T) {
	cases := []string{
		"",
		"short",
		"toolongggg",
		"DEADBEEF", // uppercase not allowed
		"deadbeeg", // 'g' is not hex
	}
	for _, c := range cases {
		if _, err := Parse(c); err == nil {
			t.Errorf("Parse(%q) expected error, got nil", c)
		}
	}
}

func TestRandomProducesValidId(t *testing.T) {
	for i := 0; i < 100; i++ {
		id, err := Random()
		if err != nil {
			t.Fatalf("Random: %v", err)
		}
		if _, err := Parse(id.String()); err != nil {
			t.Fatalf("Random produced unparseable id %q: %v", id, err)
		}
	}
}

func TestJSONRoundTrip(t *testing.T) {
	id := FromUint32(42)
	data, err := id.MarshalJSON()
	if err != nil {
		t.Fatalf("MarshalJSON: %v", err)
	}
	var out GameId
	if err := out.UnmarshalJSON(data); err != nil {
		t.Fatalf("UnmarshalJSON: %v", err)
	}
	if out != id {
		t.Fatalf("round trip mismatch: %v != %v", out, id)
	}
}
