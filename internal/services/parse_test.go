package services

import (
	"errors"
	"testing"

	"github.com/tbourn/go-shelter-backend/internal/domain"
)

func TestParseID(t *testing.T) {
	if id, err := ParseID("id", " 42 "); err != nil || id != 42 {
		t.Fatalf("ParseID = %d, %v", id, err)
	}
	for _, raw := range []string{"", "0", "-1", "abc", "1.5"} {
		if _, err := ParseID("id", raw); !errors.Is(err, ErrValidation) {
			t.Fatalf("ParseID(%q) expected validation error, got %v", raw, err)
		}
	}
}

func TestParseAge(t *testing.T) {
	if n, err := ParseAge("0"); err != nil || n != 0 {
		t.Fatalf("ParseAge(0) = %d, %v", n, err)
	}
	if n, err := ParseAge(" 7"); err != nil || n != 7 {
		t.Fatalf("ParseAge(7) = %d, %v", n, err)
	}
	for _, raw := range []string{"", "-3", "three", "2.5"} {
		var ve *ValidationError
		if _, err := ParseAge(raw); !errors.As(err, &ve) || ve.Field != "age" {
			t.Fatalf("ParseAge(%q) expected age validation error, got %v", raw, err)
		}
	}
}

func TestParseRole(t *testing.T) {
	if r, err := ParseRole("admin"); err != nil || r != domain.RoleAdmin {
		t.Fatalf("ParseRole(admin) = %q, %v", r, err)
	}
	if _, err := ParseRole("Admin"); !errors.Is(err, ErrValidation) {
		t.Fatalf("ParseRole(Admin) must reject non-literal role, got %v", err)
	}
	if r, err := ParseRole("client"); err != nil || r != domain.RoleClient {
		t.Fatalf("ParseRole(client) = %q, %v", r, err)
	}
	if _, err := ParseRole("guest"); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}
