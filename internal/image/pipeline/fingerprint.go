package pipeline

import (
	"crypto/sha256"
	"encoding/hex"
)

// ComputeHash returns the hex-encoded SHA-256 digest of the buffer.
// The digest is computed over the exact bytes that will be stored, so
// identical content always maps to the identical fingerprint regardless
// of filename or declared MIME type.
func ComputeHash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
