// Package credentials provides hashing and verification for the opaque
// per-user credential guarding favorites mutations. Only the owning identity
// may mutate its favorites; accounts created implicitly by a favorite-add
// carry no credential and remain open.
package credentials

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// ErrMismatch indicates the supplied credential does not match the stored hash.
var ErrMismatch = errors.New("credential mismatch")

// MinLength is the minimum accepted credential length at registration.
const MinLength = 8

// Hash derives a bcrypt hash for storage from the plaintext credential.
func Hash(credential string) (string, error) {
	if len(credential) < MinLength {
		return "", fmt.Errorf("credential must be at least %d characters", MinLength)
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(credential), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash credential: %w", err)
	}
	return string(hashed), nil
}

// Verify compares the supplied plaintext credential against a stored hash.
func Verify(hash, credential string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(credential)); err != nil {
		return ErrMismatch
	}
	return nil
}
