// Package hashutil provides the blake3 content hashing behind the
// report's determinism-check field.
package hashutil

import (
	"encoding/hex"

	"lukechampine.com/blake3"
)

// HashBytes returns the blake3 hash of data as a hex string.
func HashBytes(data []byte) string {
	hash := blake3.Sum256(data)
	return hex.EncodeToString(hash[:])
}
