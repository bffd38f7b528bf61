package services

import (
	"strconv"
	"strings"

	"github.com/tbourn/go-shelter-backend/internal/domain"
)

// ParseID parses a positive integer identifier typed by a user.
func ParseID(field, raw string) (uint, error) {
	n, err := strconv.ParseUint(strings.TrimSpace(raw), 10, 64)
	if err != nil || n == 0 {
		return 0, invalid(field, "must be a positive integer")
	}
	return uint(n), nil
}

// ParseAge parses a non-negative integer age.
func ParseAge(raw string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, invalid("age", "must be an integer")
	}
	if n < 0 {
		return 0, invalid("age", "must not be negative")
	}
	return n, nil
}

// ParseRole accepts "admin" or "client".
func ParseRole(raw string) (domain.Role, error) {
	r, ok := domain.ParseRole(raw)
	if !ok {
		return "", invalid("role", "must be admin or client")
	}
	return r, nil
}
