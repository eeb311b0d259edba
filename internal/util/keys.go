package util

import (
	"crypto/sha256"
	"encoding/hex"
)

// MaxKeyLength is the hard key-length budget of the backing stores.
const MaxKeyLength = 250

// StorageKey assembles "<ns>:<version>:<key>" (version omitted when empty).
// When the assembled key exceeds MaxKeyLength, the user key is replaced with
// its sha256 hex digest so the result always fits the budget.
func StorageKey(ns, version, key string) string {
	prefix := ns + ":"
	if version != "" {
		prefix += version + ":"
	}
	full := prefix + key
	if len(full) <= MaxKeyLength {
		return full
	}
	sum := sha256.Sum256([]byte(key))
	return prefix + hex.EncodeToString(sum[:])
}
