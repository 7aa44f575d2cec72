package util

import (
	"crypto/sha256"
	"encoding/hex"
)

// HashUserKey returns a filesystem-safe identifier for a user ID. Object
// store keys are namespaced by this hash so raw identities (emails, guest
// UUIDs) never appear in storage paths.
func HashUserKey(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}
