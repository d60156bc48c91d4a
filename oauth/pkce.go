package oauth

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
)

// PKCEChallenge holds a PKCE code verifier and its S256 challenge (RFC
// 7636), generated fresh for every authorization attempt.
type PKCEChallenge struct {
	Verifier  string
	Challenge string
	Method    string
}

// randomState generates an opaque CSRF-protection value for the
// authorization request's state parameter.
func randomState() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("oauth: generating state: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// NewPKCEChallenge generates a new verifier/challenge pair.
func NewPKCEChallenge() (*PKCEChallenge, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return nil, fmt.Errorf("oauth: generating PKCE verifier: %w", err)
	}
	verifier := base64.RawURLEncoding.EncodeToString(b)

	hash := sha256.Sum256([]byte(verifier))
	challenge := base64.RawURLEncoding.EncodeToString(hash[:])

	return &PKCEChallenge{Verifier: verifier, Challenge: challenge, Method: "S256"}, nil
}
