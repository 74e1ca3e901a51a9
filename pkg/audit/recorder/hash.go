package recorder

import (
	"crypto/sha256"
	"encoding/hex"
)

// MaxHashSize is the maximum number of bytes hashed from a document.
// Sources cap documents around this size already; the cap keeps a
// misconfigured size limit from turning hashing into the slow path.
const MaxHashSize = 1 << 20 // 1MB

// HashDocument computes the SHA-256 hash of a configuration document
// and returns it as a hex-encoded string. Content beyond MaxHashSize
// is not hashed.
//
// Returns an empty string if content is empty.
func HashDocument(content []byte) string {
	if len(content) == 0 {
		return ""
	}

	if len(content) > MaxHashSize {
		content = content[:MaxHashSize]
	}

	sum := sha256.Sum256(content)
	return hex.EncodeToString(sum[:])
}

// HashString is a convenience function that hashes a string document.
func HashString(content string) string {
	return HashDocument([]byte(content))
}
