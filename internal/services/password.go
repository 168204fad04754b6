package services

import "golang.org/x/crypto/bcrypt"

// bcryptCost can be raised when target hardware allows; stored hashes keep
// their own cost and stay valid.
const bcryptCost = 10

// HashPassword produces a salted bcrypt hash of a plaintext password.
func HashPassword(plaintext string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plaintext), bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CheckPassword reports whether plaintext matches the stored hash. Any
// comparison failure, including a corrupt hash, reads as a mismatch.
func CheckPassword(plaintext, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext)) == nil
}
