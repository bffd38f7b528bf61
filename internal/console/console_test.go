package console

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/tbourn/go-shelter-backend/internal/domain"
	"github.com/tbourn/go-shelter-backend/internal/repo"
	"github.com/tbourn/go-shelter-backend/internal/services"
)

// newSeededDB opens a fresh in-memory store with the bundled fixture:
// animals 1-3 available, admin1/pass1, client1/pass1 (id 3), client2/pass2.
func newSeededDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:consoledb_%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	db.Exec("PRAGMA foreign_keys=ON;")
	if err := repo.AutoMigrate(db); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	data, err := repo.LoadSeed("")
	if err != nil {
		t.Fatalf("load seed: %v", err)
	}
	if err := repo.Seed(t.Context(), db, data, nil); err != nil {
		t.Fatalf("seed: %v", err)
	}
	return db
}

// runShell feeds script (one entry per line) to a shell over db and returns
// everything it printed.
func runShell(t *testing.T, db *gorm.DB, script ...string) string {
	t.Helper()
	var out bytes.Buffer
	sh := New(
		services.NewAnimalService(db),
		services.NewAdoptionService(db),
		&services.UserService{DB: db, Scheme: services.PasswordPlain},
		Options{In: strings.NewReader(strings.Join(script, "\n") + "\n"), Out: &out},
	)
	if err := sh.Run(t.Context()); err != nil {
		t.Fatalf("Run: %v\n%s", err, out.String())
	}
	return out.String()
}

func mustContain(t *testing.T, out string, wants ...string) {
	t.Helper()
	for _, w := range wants {
		if !strings.Contains(out, w) {
			t.Fatalf("output missing %q:\n%s", w, out)
		}
	}
}

func TestRun_ExitAndEOF(t *testing.T) {
	db := newSeededDB(t)
	mustContain(t, runShell(t, db, "0"), "ANIMAL SHELTER", "Goodbye!")

	// Input ending mid-session is a clean exit.
	out := runShell(t, db, "1", "admin1")
	mustContain(t, out, "Username: ")
}

func TestRun_InvalidRoleAndBadLogin(t *testing.T) {
	db := newSeededDB(t)
	out := runShell(t, db,
		"7",
		"1", "client1", "pass1", // right credentials, wrong role
		"0",
	)
	mustContain(t, out, "Invalid choice!", "Wrong username, password or role!", "Goodbye!")
}

func TestRun_RoleByName(t *testing.T) {
	db := newSeededDB(t)
	out := runShell(t, db, "Admin", "admin1", "pass1", "0", "0")
	mustContain(t, out, "Welcome, Admin One!", "ADMINISTRATOR")
}

func TestAdminPanel_AnimalsAndStatus(t *testing.T) {
	db := newSeededDB(t)
	out := runShell(t, db,
		"1", "admin1", "pass1",
		"2", "Rex", "dog", "Husky", "5", "Healthy", "2025-03-01",
		"2", "Bad", "Cat", "", "-1",
		"3", "4", "adopted by the Smiths",
		"3", "abc",
		"3", "99", "died",
		"1",
		"0", "0",
	)
	mustContain(t, out,
		"Added! ID: 4",
		"Invalid age: must not be negative.",
		"Status updated.",
		"Invalid animal id: must be a positive integer.",
		"Animal not found.",
		"ID: 4 | Rex (dog) | Husky | 5 yrs | Status: adopted (by the Smiths)",
		"ID: 1 | Barsik (Cat)",
	)
}

func TestClientAndAdmin_AdoptionFlow(t *testing.T) {
	db := newSeededDB(t)

	out := runShell(t, db,
		"2", "client1", "pass1",
		"2", "1",
		"2", "2",
		"3",
		"0", "0",
	)
	mustContain(t, out,
		"Welcome, Client One!",
		"ID: 1 | Barsik | Cat | Breed: Mixed | Age: 3 yrs | Health: Healthy",
		"Request filed! Number: 1",
		"Request filed! Number: 2",
		"Your requests (Client One):",
		"#1 | Animal: Barsik | Status: Pending",
	)

	out = runShell(t, db,
		"1", "admin1", "pass1",
		"4",
		"5", "1",
		"6", "2",
		"5", "42",
		"0", "0",
	)
	mustContain(t, out,
		"Animal: Barsik (ID 1) | Client: Client One (+111222333) | Pending",
		"Request approved; the animal is marked adopted.",
		"Request rejected.",
		"Request not found.",
	)

	out = runShell(t, db,
		"2", "client1", "pass1",
		"4", "1",
		"2", "1",
		"1",
		"0", "0",
	)
	mustContain(t, out,
		"Could not cancel (already processed or not yours).",
		"Could not file the request (the animal may be unavailable).",
	)
	if strings.Contains(out, "ID: 1 | Barsik | Cat") {
		t.Fatalf("adopted animal still listed as available:\n%s", out)
	}
}

func TestClientPanel_CancelPending(t *testing.T) {
	db := newSeededDB(t)
	out := runShell(t, db,
		"2", "client2", "pass2",
		"2", "3",
		"4", "1",
		"3",
		"0", "0",
	)
	mustContain(t, out, "Request filed! Number: 1", "Request cancelled.", "No requests.")
}

func TestRun_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	sh := New(nil, nil, nil, Options{In: strings.NewReader(""), Out: &bytes.Buffer{}})
	if err := sh.Run(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("want context.Canceled, got %v", err)
	}
}

func TestDescribe(t *testing.T) {
	cases := []struct {
		err  error
		want string
	}{
		{services.ErrRequestNotPending, "already been decided"},
		{services.ErrForbidden, "Not allowed"},
		{errors.New("disk full"), "Error: disk full"},
	}
	for _, tc := range cases {
		if got := describe(tc.err); !strings.Contains(got, tc.want) {
			t.Fatalf("describe(%v) = %q; want %q", tc.err, got, tc.want)
		}
	}
}

func TestRoleFromChoice(t *testing.T) {
	for in, want := range map[string]domain.Role{"1": domain.RoleAdmin, "2": domain.RoleClient, "client": domain.RoleClient, "Admin": domain.RoleAdmin} {
		got, err := roleFromChoice(in)
		if err != nil || got != want {
			t.Fatalf("roleFromChoice(%q) = %q, %v", in, got, err)
		}
	}
	if _, err := roleFromChoice("9"); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}
