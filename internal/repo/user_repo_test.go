package repo

import (
	"context"
	"errors"
	"testing"

	"github.com/tbourn/go-shelter-backend/internal/domain"
)

func TestCreateUser_DuplicateUsername(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	if err := CreateUser(ctx, db, &domain.User{Username: "ann", Password: "p", Role: domain.RoleClient, Name: "Ann", Phone: "1"}); err != nil {
		t.Fatalf("first create: %v", err)
	}
	err := CreateUser(ctx, db, &domain.User{Username: "ann", Password: "q", Role: domain.RoleAdmin, Name: "Ann2", Phone: "2"})
	if !IsDuplicate(err) {
		t.Fatalf("expected duplicate error, got %v", err)
	}
}

func TestFindUserByCredentials_ExactMatchOnAllFields(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	u := seedUser(t, db, "bob", domain.RoleClient)

	got, err := FindUserByCredentials(ctx, db, "bob", "pw-bob", domain.RoleClient)
	if err != nil || got.ID != u.ID {
		t.Fatalf("expected match, got %+v err=%v", got, err)
	}

	misses := []struct {
		user, pass string
		role       domain.Role
	}{
		{"bob", "wrong", domain.RoleClient},
		{"bob", "pw-bob", domain.RoleAdmin},
		{"Bob", "pw-bob", domain.RoleClient},
		{"nobody", "pw-bob", domain.RoleClient},
	}
	for _, m := range misses {
		if _, err := FindUserByCredentials(ctx, db, m.user, m.pass, m.role); !errors.Is(err, ErrNotFound) {
			t.Fatalf("(%q,%q,%q) expected ErrNotFound, got %v", m.user, m.pass, m.role, err)
		}
	}
}

func TestFindUserByUsernameRole_GetUser_Count(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	u := seedUser(t, db, "root", domain.RoleAdmin)

	got, err := FindUserByUsernameRole(ctx, db, "root", domain.RoleAdmin)
	if err != nil || got.ID != u.ID {
		t.Fatalf("FindUserByUsernameRole: %+v err=%v", got, err)
	}
	if _, err := FindUserByUsernameRole(ctx, db, "root", domain.RoleClient); !errors.Is(err, ErrNotFound) {
		t.Fatalf("role mismatch must be not found, got %v", err)
	}
	if got, err := GetUser(ctx, db, u.ID); err != nil || got.Username != "root" {
		t.Fatalf("GetUser: %+v err=%v", got, err)
	}
	if n, err := CountUsers(ctx, db); err != nil || n != 1 {
		t.Fatalf("CountUsers = %d err=%v", n, err)
	}
}
