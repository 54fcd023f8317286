package utils

import (
	"golang.org/x/crypto/bcrypt"
)

// MinPasswordLength is the shortest password the identity provider accepts.
const MinPasswordLength = 6

// HashPassword hashes a plain-text password with bcrypt
func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(bytes), nil
}

// CheckPasswordHash compares a plain-text password with a bcrypt hash
func CheckPasswordHash(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// IsWeakPassword reports whether a password is too short to accept
func IsWeakPassword(password string) bool {
	return len([]rune(password)) < MinPasswordLength
}
