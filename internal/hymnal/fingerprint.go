package hymnal

import (
	"crypto/sha256"
	"encoding/hex"
)

// Fingerprint identifies one version of raw markup. Parsed documents and
// stored indexes are keyed by it.
func Fingerprint(raw []byte) string {
	sum := sha256.Sum256(raw)
	return hex.EncodeToString(sum[:])
}
