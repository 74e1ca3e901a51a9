package recorder

import (
	"strings"
	"testing"
)

// TestHashString tests hashing against a known SHA-256 vector.
func TestHashString(t *testing.T) {
	// sha256("hello")
	want := "2cf24dba5fb0a30e26e83b2ac5b9e29e1b161e5c1fa7425e73043362938b9824"

	if got := HashString("hello"); got != want {
		t.Errorf("HashString(\"hello\") = %q, want %q", got, want)
	}
}

// TestHashDocument_Empty tests that empty content hashes to the empty
// string rather than the hash of zero bytes.
func TestHashDocument_Empty(t *testing.T) {
	if got := HashDocument(nil); got != "" {
		t.Errorf("HashDocument(nil) = %q, want empty", got)
	}
	if got := HashDocument([]byte{}); got != "" {
		t.Errorf("HashDocument(empty) = %q, want empty", got)
	}
}

// TestHashDocument_Deterministic tests that equal documents hash
// equal and different documents do not.
func TestHashDocument_Deterministic(t *testing.T) {
	doc := []byte("listen 443;\ncache 1;\n")

	first := HashDocument(doc)
	second := HashDocument(doc)
	if first != second {
		t.Errorf("same document produced different hashes: %q vs %q", first, second)
	}

	other := HashDocument([]byte("listen 80;\n"))
	if other == first {
		t.Error("different documents produced the same hash")
	}

	if len(first) != 64 {
		t.Errorf("hash length = %d, want 64 hex characters", len(first))
	}
}

// TestHashDocument_CapsLargeContent tests that only the first
// MaxHashSize bytes contribute to the hash.
func TestHashDocument_CapsLargeContent(t *testing.T) {
	prefix := strings.Repeat("a", MaxHashSize)

	capped := HashDocument([]byte(prefix + "tail-one"))
	other := HashDocument([]byte(prefix + "tail-two"))
	if capped != other {
		t.Error("content past MaxHashSize changed the hash")
	}

	exact := HashDocument([]byte(prefix))
	if capped != exact {
		t.Error("capped hash differs from hash of the first MaxHashSize bytes")
	}
}
