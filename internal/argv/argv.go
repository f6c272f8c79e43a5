// Package argv digests argument vectors into short stable strings for use
// in cache keys.
package argv

import (
	"crypto/sha256"
	"encoding/hex"

	"github.com/fxamacker/cbor/v2"
)

// Core Deterministic encoding (RFC 8949): equal vectors encode to equal
// bytes regardless of process, platform, or map iteration order.
var enc = func() cbor.EncMode {
	em, err := cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic(err)
	}
	return em
}()

// Digest returns the first 16 hex characters of the SHA-256 over the
// deterministic encoding of vals. Values with no CBOR representation
// (functions, channels) make Digest fail; such arguments cannot take part
// in a cache key.
func Digest(vals []any) (string, error) {
	b, err := enc.Marshal(vals)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:8]), nil
}
