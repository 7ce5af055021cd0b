package service

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// Credentials hashes secrets for storage and checks login attempts
// against stored values.
type Credentials interface {
	Hash(secret string) (string, error)
	Matches(stored, given string) bool
}

// BcryptCredentials stores bcrypt hashes of the SHA-256 digest of a secret,
// so secrets past bcrypt's 72-byte input limit are accepted in full. Stored
// values that are not bcrypt hashes (rosters imported from the browser app)
// are compared verbatim.
type BcryptCredentials struct {
	cost int
}

// NewBcryptCredentials creates a bcrypt-backed Credentials with the given cost.
func NewBcryptCredentials(cost int) *BcryptCredentials {
	return &BcryptCredentials{cost: cost}
}

func (c *BcryptCredentials) Hash(secret string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword(prehash(secret), c.cost)
	if err != nil {
		return "", fmt.Errorf("hash credential: %w", err)
	}
	return string(hash), nil
}

func (c *BcryptCredentials) Matches(stored, given string) bool {
	if isBcryptHash(stored) {
		return bcrypt.CompareHashAndPassword([]byte(stored), prehash(given)) == nil
	}
	return subtle.ConstantTimeCompare([]byte(stored), []byte(given)) == 1
}

// prehash maps any secret to 44 bytes of base64, within bcrypt's input limit.
func prehash(secret string) []byte {
	sum := sha256.Sum256([]byte(secret))
	out := make([]byte, base64.StdEncoding.EncodedLen(len(sum)))
	base64.StdEncoding.Encode(out, sum[:])
	return out
}

func isBcryptHash(s string) bool {
	return len(s) == 60 && (strings.HasPrefix(s, "$2a$") || strings.HasPrefix(s, "$2b$") || strings.HasPrefix(s, "$2y$"))
}

// PlaintextCredentials stores secrets as given and matches them verbatim.
type PlaintextCredentials struct{}

func (PlaintextCredentials) Hash(secret string) (string, error) {
	return secret, nil
}

func (PlaintextCredentials) Matches(stored, given string) bool {
	return stored == given
}
