package util

import (
	"crypto/sha256"
	"encoding/hex"
)

// HashUserKey returns a stable hex digest of an identity-bearing key so it can
// be used in external stores without exposing the raw user ID.
func HashUserKey(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}
