// Package fingerprint computes content fingerprints for cache keying.
package fingerprint

import (
	"crypto/sha256"
	"encoding/hex"
)

// New returns the hex-encoded SHA-256 digest of data. Identical bytes
// always yield an identical fingerprint.
func New(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
