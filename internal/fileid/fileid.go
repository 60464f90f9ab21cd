// Package fileid derives content hashes used as cache keys.
package fileid

import (
	"crypto/sha256"
	"encoding/hex"
)

// ContentHash returns the hex-encoded SHA-256 digest of content.
// Identical bytes always yield the same hash, regardless of file name or location.
func ContentHash(content []byte) string {
	sum := sha256.Sum256(content)
	return hex.EncodeToString(sum[:])
}

// Valid reports whether s looks like a hash produced by ContentHash.
func Valid(s string) bool {
	if len(s) != sha256.Size*2 {
		return false
	}
	_, err := hex.DecodeString(s)
	return err == nil
}
