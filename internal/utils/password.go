package utils

import (
	"golang.org/x/crypto/bcrypt"
)

// HashPassword hashes a plaintext password using bcrypt after appending the
// server-wide pepper. The pepper is distinct from the per-hash salt bcrypt
// generates internally.
func HashPassword(password, pepper string, cost int) (string, error) {
	if cost <= 0 {
		cost = bcrypt.DefaultCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password+pepper), cost)
	return string(hash), err
}

// CheckPasswordHash compares a plaintext password (peppered the same way as on
// hashing) with a stored bcrypt hash. Returns false on mismatch, never errors.
func CheckPasswordHash(password, pepper, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password+pepper)) == nil
}
