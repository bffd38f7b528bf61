package app

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/tbourn/go-shelter-backend/internal/config"
	"github.com/tbourn/go-shelter-backend/internal/domain"
	"github.com/tbourn/go-shelter-backend/internal/repo"
	"github.com/tbourn/go-shelter-backend/internal/services"
)

func storeConfig(t *testing.T) config.Config {
	t.Helper()
	return config.Config{
		GinMode:        "release",
		PasswordScheme: "plain",
		DB:             config.DBConfig{Driver: repo.DriverSQLite, Path: filepath.Join(t.TempDir(), "shelter.db")},
		Seed:           config.SeedConfig{Enabled: true},
	}
}

func TestOpenStore_SeedsOnceIntoEmptyTables(t *testing.T) {
	cfg := storeConfig(t)
	for i := 0; i < 2; i++ {
		db, err := OpenStore(t.Context(), cfg, zerolog.Nop())
		if err != nil {
			t.Fatalf("open #%d: %v", i, err)
		}
		var animals, users int64
		db.Model(&domain.Animal{}).Count(&animals)
		db.Model(&domain.User{}).Count(&users)
		if animals != 3 || users != 4 {
			t.Fatalf("open #%d: animals=%d users=%d; want 3/4", i, animals, users)
		}
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
}

func TestOpenStore_BcryptSeedAuthenticates(t *testing.T) {
	cfg := storeConfig(t)
	cfg.PasswordScheme = "bcrypt"

	db, err := OpenStore(t.Context(), cfg, zerolog.Nop())
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	u, err := repo.FindUserByUsernameRole(t.Context(), db, "client1", domain.RoleClient)
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if !strings.HasPrefix(u.Password, "$2") {
		t.Fatalf("password not hashed: %q", u.Password)
	}
	users := &services.UserService{DB: db, Scheme: services.PasswordBcrypt}
	if _, err := users.Authenticate(t.Context(), "client1", "pass1", "client"); err != nil {
		t.Fatalf("authenticate: %v", err)
	}
}

func TestOpenStore_SeedDisabledAndCustomFile(t *testing.T) {
	cfg := storeConfig(t)
	cfg.Seed.Enabled = false
	db, err := OpenStore(t.Context(), cfg, zerolog.Nop())
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	var n int64
	db.Model(&domain.User{}).Count(&n)
	if n != 0 {
		t.Fatalf("users=%d; want 0 with seeding disabled", n)
	}

	cfg = storeConfig(t)
	cfg.Seed.File = filepath.Join(t.TempDir(), "seed.yaml")
	fixture := "animals:\n  - name: Rex\n    species: Dog\n    age: 1\nusers: []\n"
	if err := os.WriteFile(cfg.Seed.File, []byte(fixture), 0o600); err != nil {
		t.Fatal(err)
	}
	db, err = OpenStore(t.Context(), cfg, zerolog.Nop())
	if err != nil {
		t.Fatalf("open custom: %v", err)
	}
	db.Model(&domain.Animal{}).Count(&n)
	if n != 1 {
		t.Fatalf("animals=%d; want 1", n)
	}
}

func TestOpenStore_Errors(t *testing.T) {
	cfg := storeConfig(t)
	cfg.PasswordScheme = "rot13"
	if _, err := OpenStore(t.Context(), cfg, zerolog.Nop()); err == nil {
		t.Fatalf("expected scheme error")
	}

	cfg = storeConfig(t)
	cfg.DB.Driver = "oracle"
	if _, err := OpenStore(t.Context(), cfg, zerolog.Nop()); err == nil {
		t.Fatalf("expected driver error")
	}

	cfg = storeConfig(t)
	cfg.Seed.File = filepath.Join(t.TempDir(), "missing.yaml")
	if _, err := OpenStore(t.Context(), cfg, zerolog.Nop()); err == nil {
		t.Fatalf("expected missing seed file error")
	}
}

func TestOpenStore_FixtureUsersAreValidated(t *testing.T) {
	cfg := storeConfig(t)
	cfg.Seed.File = filepath.Join(t.TempDir(), "seed.yaml")
	fixture := "animals: []\nusers:\n  - username: nophone\n    password: pw\n    role: client\n    name: No Phone\n"
	if err := os.WriteFile(cfg.Seed.File, []byte(fixture), 0o600); err != nil {
		t.Fatal(err)
	}
	_, err := OpenStore(t.Context(), cfg, zerolog.Nop())
	if !errors.Is(err, services.ErrValidation) || !strings.Contains(err.Error(), "nophone") {
		t.Fatalf("want validation error naming the user, got %v", err)
	}
}
