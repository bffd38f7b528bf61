// Package services – UserService
//
// UserService authenticates users by username, password and role, and
// registers new ones. With the plain scheme authentication is an exact match
// on all three fields; with bcrypt the (username, role) pair is looked up and
// the hash compared. Callers never learn which field failed.
package services

import (
	"context"
	"errors"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/tbourn/go-shelter-backend/internal/domain"
	"github.com/tbourn/go-shelter-backend/internal/repo"
)

// NewUser carries the fields accepted by Register.
type NewUser struct {
	Username string
	Password string
	Role     string
	Name     string
	Phone    string
}

// UserService is the user directory.
type UserService struct {
	DB     *gorm.DB
	Scheme PasswordScheme
}

// Authenticate returns the user matching all three credentials. role must be
// "admin" or "client" (*ValidationError otherwise); any other mismatch yields
// ErrAuthentication.
func (s *UserService) Authenticate(ctx context.Context, username, password, role string) (*domain.User, error) {
	ctx, span := otel.Tracer("services/UserService").Start(ctx, "Authenticate",
		trace.WithAttributes(attribute.String("user.role", role)),
	)
	defer span.End()

	r, err := ParseRole(role)
	if err != nil {
		return nil, err
	}

	var u *domain.User
	if s.Scheme == PasswordBcrypt {
		u, err = repo.FindUserByUsernameRole(ctx, s.DB, username, r)
		if err == nil && !s.Scheme.Match(u.Password, password) {
			return nil, ErrAuthentication
		}
	} else {
		u, err = repo.FindUserByCredentials(ctx, s.DB, username, password, r)
	}
	if errors.Is(err, repo.ErrNotFound) {
		return nil, ErrAuthentication
	}
	if err != nil {
		return nil, err
	}
	return u, nil
}

// Register validates and stores a new user, hashing the password according
// to the configured scheme. A taken username is a *ValidationError.
func (s *UserService) Register(ctx context.Context, in NewUser) (*domain.User, error) {
	username := strings.TrimSpace(in.Username)
	if username == "" {
		return nil, invalid("username", "is required")
	}
	if in.Password == "" {
		return nil, invalid("password", "is required")
	}
	role, err := ParseRole(in.Role)
	if err != nil {
		return nil, err
	}
	name := collapseSpaces(in.Name)
	if name == "" {
		return nil, invalid("name", "is required")
	}
	phone := strings.TrimSpace(in.Phone)
	if phone == "" {
		return nil, invalid("phone", "is required")
	}

	pw, err := s.Scheme.Hash(in.Password)
	if err != nil {
		return nil, err
	}
	u := &domain.User{Username: username, Password: pw, Role: role, Name: name, Phone: phone}
	if err := repo.CreateUser(ctx, s.DB, u); err != nil {
		if repo.IsDuplicate(err) {
			return nil, invalid("username", "is already taken")
		}
		return nil, err
	}
	return u, nil
}

// Session builds the workflow session for an authenticated user.
func (s *UserService) Session(u *domain.User) Session {
	if u == nil {
		return Session{}
	}
	return Session{UserID: u.ID, Role: u.Role, Name: u.Name}
}
