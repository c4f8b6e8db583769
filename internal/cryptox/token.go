// Package cryptox holds the hashing primitives of the service: single-use
// registration tokens (only the SHA-256 digest is persisted) and argon2id
// password credentials.
package cryptox

import (
	"crypto/sha256"
	"encoding/hex"

	"github.com/dmitrijs2005/gophauth/internal/common"
)

// TokenLength is the length of the plaintext token handed to the user.
const TokenLength = 64

// Tokens generates registration tokens and their stored form.
type Tokens struct{}

// NewTokens returns the default token generator.
func NewTokens() Tokens {
	return Tokens{}
}

// Generate returns a fresh plaintext token and the hash to persist.
func (Tokens) Generate() (plain string, hashed string, err error) {
	plain, err = common.MakeRandString(TokenLength, common.Alphanumeric)
	if err != nil {
		return "", "", err
	}
	return plain, HashToken(plain), nil
}

// Hash returns the stored form of a presented token.
func (Tokens) Hash(plain string) string {
	return HashToken(plain)
}

// HashToken is the lowercase hex SHA-256 of the token. The output is 64
// characters and fits the registration_tokens.token column.
func HashToken(plain string) string {
	sum := sha256.Sum256([]byte(plain))
	return hex.EncodeToString(sum[:])
}
