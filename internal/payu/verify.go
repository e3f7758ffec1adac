package payu

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// Verifier authenticates inbound gateway notifications.
type Verifier struct {
	secret []byte
}

// NewVerifier returns a Verifier keyed with the shared webhook secret.
func NewVerifier(secret string) *Verifier {
	return &Verifier{secret: []byte(secret)}
}

// Verify reports whether header carries a valid HMAC-SHA256 signature of
// rawBody. The header format is "sender=<id>;signature=sha256=<hex>"; only
// the signature pair is consumed.
//
// rawBody must be the exact byte sequence received on the wire, before any
// JSON parsing — re-serializing the parsed payload would break verification
// for any sender whose serialization differs byte-for-byte.
//
// Verify never returns an error: a missing header, malformed pairs, a
// non-sha256 scheme, or undecodable hex all yield false.
func (v *Verifier) Verify(rawBody []byte, header string) bool {
	if header == "" {
		return false
	}

	var declared string
	for _, part := range strings.Split(header, ";") {
		key, value, ok := strings.Cut(part, "=")
		if !ok {
			continue
		}
		if strings.TrimSpace(key) == "signature" {
			declared = value
		}
	}

	hexDigest, ok := strings.CutPrefix(declared, "sha256=")
	if !ok {
		return false
	}
	received, err := hex.DecodeString(hexDigest)
	if err != nil {
		return false
	}

	mac := hmac.New(sha256.New, v.secret)
	mac.Write(rawBody)

	// hmac.Equal is constant-time; comparing decoded bytes rather than hex
	// strings also neutralizes case differences in the digest.
	return hmac.Equal(received, mac.Sum(nil))
}
