// Package crypto wraps password hashing for account credentials.
package crypto

import "golang.org/x/crypto/bcrypt"

// hashCost pins the bcrypt work factor. A fixed cost keeps hash timing
// stable across library upgrades that bump the default.
const hashCost = bcrypt.DefaultCost

// HashPassword returns a bcrypt hash of the supplied password.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), hashCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// VerifyPassword reports whether the plaintext candidate matches the stored
// hash. It never distinguishes "wrong password" from "malformed hash".
func VerifyPassword(hashedPassword, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password)) == nil
}
