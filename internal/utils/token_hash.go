package utils

import (
	"crypto/sha256"
	"encoding/hex"
)

// HashToken generates the SHA-256 fingerprint of an opaque token. The
// fingerprint is deterministic so stored tokens can be looked up by hash;
// the plaintext token is never persisted.
func HashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// CompareTokenHash compares a plain opaque token with its stored fingerprint.
// The `token` parameter is the raw token string, not a hash.
func CompareTokenHash(token string, storedHash string) bool {
	return HashToken(token) == storedHash
}
