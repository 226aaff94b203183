package library

import (
	"encoding/hex"

	"github.com/zeebo/blake3"
)

// ContentHash returns the hex BLAKE3-256 digest of a module's source bytes.
func ContentHash(data []byte) string {
	h := blake3.Sum256(data)
	return hex.EncodeToString(h[:])
}
