package auth

import (
	"golang.org/x/crypto/bcrypt"

	"github.com/campuschat/campuschat/internal/domain"
)

func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CheckPassword compares the candidate against the stored hash and
// reports a mismatch as domain.ErrWrongPassword.
func CheckPassword(hash, password string) error {
	if bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) != nil {
		return domain.ErrWrongPassword
	}
	return nil
}
