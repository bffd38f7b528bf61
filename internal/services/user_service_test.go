package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/tbourn/go-shelter-backend/internal/domain"
)

func TestAuthenticate_PlainExactMatch(t *testing.T) {
	db := newSvcDB(t)
	s := &UserService{DB: db, Scheme: PasswordPlain}
	ctx := context.Background()

	u, err := s.Register(ctx, NewUser{Username: "client1", Password: "pass1", Role: "client", Name: "Client One", Phone: "+111"})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if u.Password != "pass1" {
		t.Fatalf("plain scheme must store password as is")
	}

	got, err := s.Authenticate(ctx, "client1", "pass1", "client")
	if err != nil || got.ID != u.ID {
		t.Fatalf("Authenticate: %+v, %v", got, err)
	}

	for _, c := range [][3]string{
		{"client1", "wrong", "client"},
		{"client1", "pass1", "admin"},
		{"nobody", "pass1", "client"},
	} {
		if _, err := s.Authenticate(ctx, c[0], c[1], c[2]); !errors.Is(err, ErrAuthentication) {
			t.Fatalf("Authenticate%v expected ErrAuthentication, got %v", c, err)
		}
	}
	for _, role := range []string{"root", "CLIENT", " client"} {
		if _, err := s.Authenticate(ctx, "client1", "pass1", role); !errors.Is(err, ErrValidation) {
			t.Fatalf("Authenticate role %q: expected validation error, got %v", role, err)
		}
	}
}

func TestAuthenticate_Bcrypt(t *testing.T) {
	db := newSvcDB(t)
	s := &UserService{DB: db, Scheme: PasswordBcrypt}
	ctx := context.Background()

	u, err := s.Register(ctx, NewUser{Username: "admin1", Password: "pass1", Role: "admin", Name: "Admin", Phone: "+1"})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if u.Password == "pass1" || !strings.HasPrefix(u.Password, "$2") {
		t.Fatalf("expected bcrypt hash, got %q", u.Password)
	}
	if _, err := s.Authenticate(ctx, "admin1", "pass1", "admin"); err != nil {
		t.Fatalf("Authenticate: %v", err)
	}
	if _, err := s.Authenticate(ctx, "admin1", "pass2", "admin"); !errors.Is(err, ErrAuthentication) {
		t.Fatalf("wrong password: %v", err)
	}
	if _, err := s.Authenticate(ctx, "admin1", "pass1", "client"); !errors.Is(err, ErrAuthentication) {
		t.Fatalf("wrong role: %v", err)
	}
}

func TestRegister_Validation(t *testing.T) {
	db := newSvcDB(t)
	s := &UserService{DB: db}
	ctx := context.Background()

	base := NewUser{Username: "u", Password: "p", Role: "client", Name: "U", Phone: "1"}
	cases := map[string]func(*NewUser){
		"username": func(n *NewUser) { n.Username = " " },
		"password": func(n *NewUser) { n.Password = "" },
		"role":     func(n *NewUser) { n.Role = "guest" },
		"name":     func(n *NewUser) { n.Name = "" },
		"phone":    func(n *NewUser) { n.Phone = "" },
	}
	for field, mutate := range cases {
		in := base
		mutate(&in)
		var ve *ValidationError
		if _, err := s.Register(ctx, in); !errors.As(err, &ve) || ve.Field != field {
			t.Fatalf("expected validation error on %s, got %v", field, err)
		}
	}

	if _, err := s.Register(ctx, base); err != nil {
		t.Fatalf("Register: %v", err)
	}
	var ve *ValidationError
	if _, err := s.Register(ctx, base); !errors.As(err, &ve) || ve.Field != "username" {
		t.Fatalf("expected duplicate username validation error, got %v", err)
	}
}

func TestSession(t *testing.T) {
	s := &UserService{}
	sess := s.Session(&domain.User{ID: 3, Role: domain.RoleClient, Name: "Ann"})
	if sess.UserID != 3 || !sess.IsClient() || sess.IsAdmin() || sess.Name != "Ann" {
		t.Fatalf("unexpected session: %+v", sess)
	}
	if empty := s.Session(nil); empty.IsClient() || empty.IsAdmin() {
		t.Fatalf("nil user must give an anonymous session")
	}
}
