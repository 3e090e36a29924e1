package auth

import (
	"crypto/rand"
	"encoding/hex"
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// MinTokenLength is the minimum accepted admin token length.
const MinTokenLength = 24

var (
	ErrInvalidToken  = errors.New("invalid token")
	ErrTokenTooShort = errors.New("token must be at least 24 characters")
	ErrTokenTooLong  = errors.New("token exceeds maximum length of 72 bytes")
)

// HashToken creates a bcrypt hash of an admin token.
func HashToken(token string, cost int) (string, error) {
	if len(token) < MinTokenLength {
		return "", ErrTokenTooShort
	}
	// bcrypt has a 72-byte limit
	if len(token) > 72 {
		return "", ErrTokenTooLong
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(token), cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CheckToken compares a token with its bcrypt hash.
func CheckToken(token, hash string) error {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(token))
	if err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return ErrInvalidToken
		}
		return err
	}
	return nil
}

// GenerateToken creates a random admin token and its bcrypt hash. The
// plaintext is shown once; only the hash is configured.
func GenerateToken(cost int) (plaintext string, hash string, err error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", "", err
	}
	plaintext = hex.EncodeToString(buf)
	hash, err = HashToken(plaintext, cost)
	if err != nil {
		return "", "", err
	}
	return plaintext, hash, nil
}
