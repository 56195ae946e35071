package token

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
)

// SessionTokenLength is the length of every session token string.
const SessionTokenLength = 32

// NewSessionToken generates a cryptographically random 32-character URL-safe
// token (24 random bytes, 192 bits of entropy).
func NewSessionToken() (string, error) {
	b := make([]byte, SessionTokenLength*3/4)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate session token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
