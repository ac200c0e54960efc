// Package checksum fingerprints note contents. Index rows, storage entries
// and the watcher compare fingerprints to skip work on unchanged files.
package checksum

import (
	"crypto/sha256"
	"encoding/hex"
)

// Sum returns the hex-encoded SHA-256 digest of data.
func Sum(data []byte) string {
	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:])
}

// Matches reports whether sum is the fingerprint of data. An empty sum
// never matches.
func Matches(sum string, data []byte) bool {
	return sum != "" && sum == Sum(data)
}
