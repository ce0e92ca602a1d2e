package hub

import (
	"strings"
	"testing"
)

func TestDeriveKeyDeterministic(t *testing.T) {
	k1, err := DeriveKey("script_execution", "T1", "BUILD_42")
	if err != nil {
		t.Fatalf("derive: %v", err)
	}
	k2, err := DeriveKey("script_execution", "T1", "BUILD_42")
	if err != nil {
		t.Fatalf("derive: %v", err)
	}
	if k1 != k2 {
		t.Fatalf("same inputs must derive same key: %s vs %s", k1, k2)
	}
}

func TestDeriveKeyFieldBoundaries(t *testing.T) {
	// Without separators ("a","bc","d") and ("ab","c","d") would collide.
	k1, err := DeriveKey("a", "bc", "d")
	if err != nil {
		t.Fatalf("derive: %v", err)
	}
	k2, err := DeriveKey("ab", "c", "d")
	if err != nil {
		t.Fatalf("derive: %v", err)
	}
	if k1 == k2 {
		t.Fatalf("cross-field collision: %s", k1)
	}
}

func TestDeriveKeyRejectsBadInputs(t *testing.T) {
	if _, err := DeriveKey("", "t", "k"); err == nil {
		t.Fatalf("empty entity type must be rejected")
	}
	if _, err := DeriveKey("e", "t", ""); err == nil {
		t.Fatalf("empty business key must be rejected")
	}
	big := strings.Repeat("x", MaxFieldBytes+1)
	if _, err := DeriveKey("e", "t", big); err == nil {
		t.Fatalf("oversized business key must be rejected")
	}
}

func TestKeyRoundTrip(t *testing.T) {
	k, err := DeriveKey("e", "t", "b")
	if err != nil {
		t.Fatalf("derive: %v", err)
	}
	parsed, err := ParseKey(k.String())
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if parsed != k {
		t.Fatalf("round trip mismatch: %s vs %s", parsed, k)
	}
	if _, err := ParseKey("zz"); err == nil {
		t.Fatalf("invalid hex must be rejected")
	}
}
