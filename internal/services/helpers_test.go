package services

import (
	"fmt"
	"strings"
	"testing"

	sqlite "github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/tbourn/go-shelter-backend/internal/domain"
	"github.com/tbourn/go-shelter-backend/internal/repo"
)

// ---------- test helpers ----------

func newSvcDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:svc_%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	db.Exec("PRAGMA foreign_keys=ON;")
	if err := repo.AutoMigrate(db); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	return db
}

func mkAnimal(t *testing.T, db *gorm.DB, name string, status domain.AnimalStatus) *domain.Animal {
	t.Helper()
	age := 3
	a := &domain.Animal{Name: name, Species: "Cat", Age: &age, ArrivalDate: "2025-01-10", Status: status}
	if err := db.Create(a).Error; err != nil {
		t.Fatalf("create animal: %v", err)
	}
	return a
}

func mkUser(t *testing.T, db *gorm.DB, username string, role domain.Role) *domain.User {
	t.Helper()
	u := &domain.User{Username: username, Password: "pw", Role: role, Name: strings.ToUpper(username), Phone: "+1"}
	if err := db.Create(u).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}
	return u
}

func clientSession(u *domain.User) Session {
	return Session{UserID: u.ID, Role: domain.RoleClient, Name: u.Name}
}

func animalStatus(t *testing.T, db *gorm.DB, id uint) domain.AnimalStatus {
	t.Helper()
	a, err := repo.GetAnimal(t.Context(), db, id)
	if err != nil {
		t.Fatalf("get animal %d: %v", id, err)
	}
	return a.Status
}

func requestStatus(t *testing.T, db *gorm.DB, id uint) domain.RequestStatus {
	t.Helper()
	r, err := repo.GetRequest(t.Context(), db, id)
	if err != nil {
		t.Fatalf("get request %d: %v", id, err)
	}
	return r.Status
}

func countRequests(t *testing.T, db *gorm.DB) int64 {
	t.Helper()
	var n int64
	if err := db.Model(&domain.AdoptionRequest{}).Count(&n).Error; err != nil {
		t.Fatalf("count requests: %v", err)
	}
	return n
}
