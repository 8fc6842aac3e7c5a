package utils

import (
	"strings"
	"testing"
)

func TestHashStringDeterministic(t *testing.T) {
	a := HashString("complaint text")
	b := HashString("complaint text")
	if a != b {
		t.Errorf("hashes differ: %q vs %q", a, b)
	}
	if len(a) != 32 {
		t.Errorf("hash length = %d, want 32 hex chars", len(a))
	}
	if a == HashString("different text") {
		t.Error("distinct inputs produced equal hashes")
	}
}

func TestDedupKeyPrefixOnly(t *testing.T) {
	prefix := strings.Repeat("a", 150)

	// Documents sharing the first 150 chars collapse to the same key.
	if DedupKey(prefix+" tail one") != DedupKey(prefix+" tail two") {
		t.Error("same prefix should yield the same key")
	}

	if DedupKey("short document") != HashString("short document") {
		t.Error("short documents hash whole text")
	}

	if DedupKey(prefix+"x") == DedupKey(strings.Repeat("b", 150)+"x") {
		t.Error("different prefixes should yield different keys")
	}
}
