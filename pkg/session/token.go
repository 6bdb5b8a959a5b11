package session

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"strings"
)

const (
	// TokenPrefix identifies console session tokens.
	TokenPrefix = "console_"
	// TokenLength is the number of random bytes per token.
	TokenLength = 32
)

// TokenGenerator creates and hashes opaque bearer tokens. Tokens are never
// stored in plaintext; sessions are keyed by the SHA-256 hash.
type TokenGenerator struct{}

// NewTokenGenerator creates a token generator.
func NewTokenGenerator() *TokenGenerator {
	return &TokenGenerator{}
}

// Generate creates a token of the form console_<base64url(32 random bytes)>
// and returns it with its storage hash.
func (tg *TokenGenerator) Generate() (token string, tokenHash string, err error) {
	randomBytes := make([]byte, TokenLength)
	if _, err := rand.Read(randomBytes); err != nil {
		return "", "", fmt.Errorf("failed to generate random bytes: %w", err)
	}

	token = TokenPrefix + base64.RawURLEncoding.EncodeToString(randomBytes)
	return token, tg.Hash(token), nil
}

// Hash computes the SHA-256 hash of a token for lookup.
func (tg *TokenGenerator) Hash(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// ValidateFormat checks token shape before any lookup.
func (tg *TokenGenerator) ValidateFormat(token string) error {
	if !strings.HasPrefix(token, TokenPrefix) {
		return fmt.Errorf("token must start with %q", TokenPrefix)
	}
	encoded := strings.TrimPrefix(token, TokenPrefix)
	if encoded == "" {
		return fmt.Errorf("token is too short")
	}
	if _, err := base64.RawURLEncoding.DecodeString(encoded); err != nil {
		return fmt.Errorf("invalid token encoding: %w", err)
	}
	return nil
}
