package signing

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"fmt"
)

// HashPrefixLength is the number of hex characters of the context hash
// embedded in verify URLs.
const HashPrefixLength = 16

// HashContent returns the 64-hex SHA-256 fingerprint of canonicalized
// content.
func HashContent(canonical []byte) string {
	sum := sha256.Sum256(canonical)
	return hex.EncodeToString(sum[:])
}

// HashPrefix returns the verify-URL prefix of a context hash.
func HashPrefix(ctxHash string) string {
	if len(ctxHash) < HashPrefixLength {
		return ctxHash
	}
	return ctxHash[:HashPrefixLength]
}

// EqualHash compares two hex hash strings in constant time.
func EqualHash(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}

// NewJti returns a 12-character URL-safe token id from 9 random bytes.
// Collisions are possible at this length and are handled at insert time by
// regenerating.
func NewJti() (string, error) {
	b := make([]byte, 9)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate jti: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// NewNonce returns a 32-hex anti-replay nonce from 16 random bytes.
func NewNonce() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate nonce: %w", err)
	}
	return hex.EncodeToString(b), nil
}
