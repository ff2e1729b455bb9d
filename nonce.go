package paygate

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"regexp"
)

var nonceRegex = regexp.MustCompile(`^0x[0-9a-fA-F]{64}$`)

// NewNonce generates a cryptographically secure 32-byte nonce, hex-encoded
// with a 0x prefix.
func NewNonce() (string, error) {
	var nonce [32]byte
	if _, err := rand.Read(nonce[:]); err != nil {
		return "", fmt.Errorf("failed to generate nonce: %w", err)
	}
	return "0x" + hex.EncodeToString(nonce[:]), nil
}

// ValidNonce reports whether s is a 0x-prefixed 32-byte hex string.
func ValidNonce(s string) bool {
	return nonceRegex.MatchString(s)
}
