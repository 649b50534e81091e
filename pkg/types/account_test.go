package types

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestAccountIDValidate(t *testing.T) {
	valid := []string{
		"ab",
		"alice",
		"alice.klingnet",
		"sub.alice.klingnet",
		"treasury.klingnet",
		"a1b2c3",
		"a_b",
		"a-b",
		"a_b-c.d_e",
		"0x123",
		strings.Repeat("a", 64),
	}
	for _, s := range valid {
		if _, err := ParseAccountID(s); err != nil {
			t.Errorf("ParseAccountID(%q): unexpected error: %v", s, err)
		}
	}

	invalid := []string{
		"",
		"a",
		strings.Repeat("a", 65),
		"Alice",
		"alice!",
		"alice klingnet",
		".alice",
		"alice.",
		"alice..bob",
		"_alice",
		"alice_",
		"-alice",
		"alice-",
		"a_.b",
		"a._b",
	}
	for _, s := range invalid {
		if _, err := ParseAccountID(s); err == nil {
			t.Errorf("ParseAccountID(%q): expected error", s)
		}
	}
}

func TestAccountIDJSON(t *testing.T) {
	a := AccountID("alice.klingnet")
	data, err := json.Marshal(a)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(data) != `"alice.klingnet"` {
		t.Fatalf("marshal = %s", data)
	}

	var back AccountID
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if back != a {
		t.Fatalf("round trip mismatch: %q", back)
	}

	// Invalid IDs are rejected at the JSON boundary.
	if err := json.Unmarshal([]byte(`"Not Valid"`), &back); err == nil {
		t.Fatal("invalid account ID should be rejected")
	}

	// Empty is allowed (optional account params).
	var empty AccountID
	if err := json.Unmarshal([]byte(`""`), &empty); err != nil {
		t.Fatalf("unmarshal empty: %v", err)
	}
	if !empty.IsZero() {
		t.Fatal("empty should be zero")
	}
}
