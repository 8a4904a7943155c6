// internal/pkg/auth/password.go
package auth

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"github.com/your-org/storefront-backend/internal/config"
	"golang.org/x/crypto/bcrypt"
)

var (
	sequentialLetters = regexp.MustCompile(`(abc|bcd|cde|def|efg|fgh|ghi|hij|ijk|jkl|klm|lmn|mno|nop|opq|pqr|qrs|rst|stu|tuv|uvw|vwx|wxy|xyz)`)
	sequentialDigits  = regexp.MustCompile(`(012|123|234|345|456|567|678|789)`)
)

// hasRepeatedRunes reports whether s contains the same rune three or more
// times in a row. Go's regexp has no backreferences, so `(.)\1{2,}` cannot be
// expressed as a pattern; this implements the same check directly.
func hasRepeatedRunes(s string) bool {
	var prev rune
	run := 0
	for _, r := range s {
		if r == prev && r != '\n' {
			run++
			if run >= 3 {
				return true
			}
		} else {
			prev = r
			run = 1
		}
	}
	return false
}

// Passwords containing any of these (case-insensitive) are rejected outright.
var weakPasswords = []string{
	"password", "123456", "qwerty", "letmein",
	"welcome", "monkey", "dragon", "football", "admin",
}

// PasswordManager hashes and checks passwords with the configured bcrypt cost
type PasswordManager struct {
	config *config.Config
}

func NewPasswordManager(cfg *config.Config) *PasswordManager {
	return &PasswordManager{config: cfg}
}

// HashPassword validates strength and returns the bcrypt hash
func (p *PasswordManager) HashPassword(password string) (string, error) {
	if err := p.ValidatePassword(password); err != nil {
		return "", fmt.Errorf("password validation failed: %w", err)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), p.config.Security.BcryptCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}

	return string(hashed), nil
}

// VerifyPassword compares a candidate password against a stored hash
func (p *PasswordManager) VerifyPassword(password, hash string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
}

// ValidatePassword enforces the strength policy: 8-128 characters drawn from
// all four character classes, with no sequential runs, repeats, or entries
// from the weak-password list.
func (p *PasswordManager) ValidatePassword(password string) error {
	if len(password) < 8 {
		return fmt.Errorf("password must be at least 8 characters long")
	}
	if len(password) > 128 {
		return fmt.Errorf("password must be no more than 128 characters long")
	}

	var hasUpper, hasLower, hasNumber, hasSpecial bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsNumber(r):
			hasNumber = true
		case unicode.IsPunct(r) || unicode.IsSymbol(r):
			hasSpecial = true
		}
	}

	if !hasUpper {
		return fmt.Errorf("password must contain at least one uppercase letter")
	}
	if !hasLower {
		return fmt.Errorf("password must contain at least one lowercase letter")
	}
	if !hasNumber {
		return fmt.Errorf("password must contain at least one number")
	}
	if !hasSpecial {
		return fmt.Errorf("password must contain at least one special character")
	}

	return p.checkWeakPatterns(password)
}

func (p *PasswordManager) checkWeakPatterns(password string) error {
	lower := strings.ToLower(password)

	if sequentialLetters.MatchString(lower) {
		return fmt.Errorf("password cannot contain sequential letters")
	}
	if sequentialDigits.MatchString(password) {
		return fmt.Errorf("password cannot contain sequential numbers")
	}
	if hasRepeatedRunes(password) {
		return fmt.Errorf("password cannot contain more than 2 repeating characters")
	}

	for _, weak := range weakPasswords {
		if strings.Contains(lower, weak) {
			return fmt.Errorf("password is too common and easily guessable")
		}
	}

	return nil
}
