package security

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

var ErrKeyMismatch = errors.New("api key does not match")

// APIKeyVerifier checks presented admin keys against a stored hash. Only
// the bcrypt hash lives in configuration; candidate passwords from the
// check endpoint never pass through here.
type APIKeyVerifier interface {
	Verify(presented string) error
}

type bcryptVerifier struct {
	hash []byte
}

// NewBcryptVerifier builds a verifier from a bcrypt hash string.
func NewBcryptVerifier(hash string) APIKeyVerifier {
	return &bcryptVerifier{hash: []byte(hash)}
}

func (v *bcryptVerifier) Verify(presented string) error {
	if len(v.hash) == 0 {
		return ErrKeyMismatch
	}
	if err := bcrypt.CompareHashAndPassword(v.hash, []byte(presented)); err != nil {
		return ErrKeyMismatch
	}
	return nil
}

// HashAPIKey produces a bcrypt hash suitable for the admin.api_key_hash
// config field.
func HashAPIKey(key string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(key), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(bytes), nil
}
