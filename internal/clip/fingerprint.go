package clip

import (
	"crypto/sha256"
	"encoding/hex"
)

// Fingerprint returns the SHA-256 hex digest of the payload's normalized
// bytes. This is the dedup key: equal content always hashes equal, and
// distinct content collides only with cryptographic improbability.
func Fingerprint(p Payload) string {
	b := p.Bytes()
	if len(b) == 0 {
		return ""
	}
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}

// FingerprintText fingerprints a raw string after trimming, matching how
// text payloads are normalized before capture.
func FingerprintText(s string) string {
	return Fingerprint(TextPayload{Text: NormalizeText(s)})
}
