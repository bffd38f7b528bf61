package repo

import (
	"context"
	"errors"
	"testing"

	"gorm.io/gorm"

	"github.com/tbourn/go-shelter-backend/internal/domain"
)

func TestCreateAnimal_AssignsID(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	age := 5
	a := &domain.Animal{Name: "Rex", Species: "Dog", Breed: "Beagle", Age: &age, ArrivalDate: "2025-03-01", Status: domain.AnimalAvailable}
	if err := CreateAnimal(ctx, db, a); err != nil {
		t.Fatalf("CreateAnimal: %v", err)
	}
	if a.ID == 0 {
		t.Fatalf("expected id to be assigned")
	}

	got, err := GetAnimal(ctx, db, a.ID)
	if err != nil {
		t.Fatalf("GetAnimal: %v", err)
	}
	if got.Name != "Rex" || got.Breed != "Beagle" || got.Age == nil || *got.Age != 5 || got.Status != domain.AnimalAvailable {
		t.Fatalf("unexpected animal: %+v", got)
	}
}

func TestGetAnimal_NotFound(t *testing.T) {
	db := newTestDB(t)
	_, err := GetAnimal(context.Background(), db, 99)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestListAnimals_OrderAndFilter(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	a1 := seedAnimal(t, db, "A", domain.AnimalAvailable)
	a2 := seedAnimal(t, db, "B", domain.AnimalAdopted)
	a3 := seedAnimal(t, db, "C", domain.AnimalAvailable)

	all, err := ListAnimals(ctx, db)
	if err != nil {
		t.Fatalf("ListAnimals: %v", err)
	}
	if len(all) != 3 || all[0].ID != a1.ID || all[1].ID != a2.ID || all[2].ID != a3.ID {
		t.Fatalf("unexpected order: %+v", all)
	}

	avail, err := ListAnimalsByStatus(ctx, db, domain.AnimalAvailable)
	if err != nil {
		t.Fatalf("ListAnimalsByStatus: %v", err)
	}
	if len(avail) != 2 || avail[0].ID != a1.ID || avail[1].ID != a3.ID {
		t.Fatalf("unexpected available set: %+v", avail)
	}
}

func TestListAnimals_EmptyIsNonNil(t *testing.T) {
	db := newTestDB(t)
	all, err := ListAnimals(context.Background(), db)
	if err != nil || all == nil || len(all) != 0 {
		t.Fatalf("expected empty non-nil slice, got %v (err=%v)", all, err)
	}
}

func TestUpdateAnimalStatus(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	a := seedAnimal(t, db, "A", domain.AnimalAvailable)

	if err := UpdateAnimalStatus(ctx, db, a.ID, domain.AnimalRemoved, "transferred"); err != nil {
		t.Fatalf("UpdateAnimalStatus: %v", err)
	}
	got, _ := GetAnimal(ctx, db, a.ID)
	if got.Status != domain.AnimalRemoved || got.StatusReason != "transferred" {
		t.Fatalf("status not updated: %+v", got)
	}

	if err := UpdateAnimalStatus(ctx, db, 12345, domain.AnimalAdopted, ""); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("expected ErrRecordNotFound for missing id, got %v", err)
	}
}

func TestSwapAnimalStatus(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	a := seedAnimal(t, db, "A", domain.AnimalAvailable)

	ok, err := SwapAnimalStatus(ctx, db, a.ID, domain.AnimalAvailable, domain.AnimalAdopted)
	if err != nil || !ok {
		t.Fatalf("first swap: ok=%v err=%v", ok, err)
	}
	ok, err = SwapAnimalStatus(ctx, db, a.ID, domain.AnimalAvailable, domain.AnimalAdopted)
	if err != nil || ok {
		t.Fatalf("second swap must not apply: ok=%v err=%v", ok, err)
	}
}

func TestAnimalRepo_ErrorsWithoutTable(t *testing.T) {
	db := newTestDB(t, nil)
	if _, err := ListAnimals(context.Background(), db); err == nil {
		t.Fatalf("expected error due to missing animals table")
	}
}
