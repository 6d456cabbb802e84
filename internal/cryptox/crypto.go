// Package cryptox holds password hashing and credential fingerprinting.
package cryptox

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/seedclassifier/internal/common"
	"golang.org/x/crypto/bcrypt"
)

// PasswordCost is the bcrypt work factor used for every stored hash.
const PasswordCost = 10

// HashPassword returns the bcrypt hash of password.
//
// Example:
//
//	hash, err := cryptox.HashPassword([]byte("secret"))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(hash) // $2a$10$...
func HashPassword(password []byte) (string, error) {
	if len(password) == 0 {
		return "", common.ErrorEmptyPassword
	}
	h, err := bcrypt.GenerateFromPassword(password, PasswordCost)
	if err != nil {
		return "", fmt.Errorf("bcrypt: %w", err)
	}
	return string(h), nil
}

// ComparePassword reports whether password matches hash.
// A mismatch yields common.ErrorUnauthorized; a malformed hash is returned
// as an internal error.
func ComparePassword(hash string, password []byte) error {
	err := bcrypt.CompareHashAndPassword([]byte(hash), password)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return common.ErrorUnauthorized
	default:
		return fmt.Errorf("%w: bcrypt: %v", common.ErrorInternal, err)
	}
}

// Fingerprint returns a hex SHA-256 of the login/password pair.
// Used as a cache key so raw passwords are never held in memory longer than a request.
func Fingerprint(login string, password []byte) string {
	h := sha256.New()
	h.Write([]byte(login))
	h.Write([]byte{0})
	h.Write(password)
	return hex.EncodeToString(h.Sum(nil))
}
