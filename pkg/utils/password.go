package utils

import (
	"golang.org/x/crypto/bcrypt"
)

// bcryptCost matches the salt rounds the rest of the stack expects.
const bcryptCost = 10

// HashPassword hashes a password with bcrypt. Every call generates a fresh
// salt, so two hashes of the same password differ.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CheckPassword reports whether password matches the stored bcrypt digest.
func CheckPassword(password, hashedPassword string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password)) == nil
}
