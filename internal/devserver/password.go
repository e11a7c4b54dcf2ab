package devserver

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

var errInvalidCredentials = errors.New("invalid username or password")

// hashPassword hashes password with bcrypt at cost.
func hashPassword(password string, cost int) (string, error) {
	if password == "" {
		return "", errors.New("password is required")
	}
	b, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", fmt.Errorf("hashing password: %w", err)
	}
	return string(b), nil
}

// checkPassword compares password with a stored hash.
func checkPassword(password, hash string) error {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return errInvalidCredentials
	}
	if err != nil {
		return fmt.Errorf("checking password: %w", err)
	}
	return nil
}
