package services

import (
	"crypto/subtle"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// PasswordScheme selects how credentials are stored and compared.
type PasswordScheme string

const (
	// PasswordPlain stores passwords as typed and compares them exactly.
	PasswordPlain PasswordScheme = "plain"
	// PasswordBcrypt stores salted bcrypt hashes.
	PasswordBcrypt PasswordScheme = "bcrypt"
)

// ParsePasswordScheme accepts "plain" or "bcrypt"; empty means plain.
func ParsePasswordScheme(s string) (PasswordScheme, error) {
	switch PasswordScheme(strings.ToLower(strings.TrimSpace(s))) {
	case "", PasswordPlain:
		return PasswordPlain, nil
	case PasswordBcrypt:
		return PasswordBcrypt, nil
	}
	return "", fmt.Errorf("unknown password scheme %q", s)
}

// Hash returns the stored form of password under the scheme.
func (p PasswordScheme) Hash(password string) (string, error) {
	if p != PasswordBcrypt {
		return password, nil
	}
	b, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Match reports whether password corresponds to stored.
func (p PasswordScheme) Match(stored, password string) bool {
	if p == PasswordBcrypt {
		return bcrypt.CompareHashAndPassword([]byte(stored), []byte(password)) == nil
	}
	return subtle.ConstantTimeCompare([]byte(stored), []byte(password)) == 1
}
