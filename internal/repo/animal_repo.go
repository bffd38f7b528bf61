// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the Animal
// model.
//
// All functions are context-aware and accept a *gorm.DB handle, making them
// safe for use within transactions. They follow the "thin repository"
// approach: no business logic, only persistence and query composition.
//
// Error semantics:
//   - When an animal is not found, functions return gorm.ErrRecordNotFound
//     (also exported here as ErrNotFound for convenience).
//   - On DB errors the raw gorm error is propagated.
//
// Functions:
//
//   - CreateAnimal(ctx, db, a) -> error
//     Inserts the row; a.ID is filled with the store-assigned id.
//
//   - GetAnimal(ctx, db, id) -> *domain.Animal, error
//
//   - ListAnimals(ctx, db) -> []domain.Animal, error
//     All animals regardless of status, ordered by id ascending.
//
//   - ListAnimalsByStatus(ctx, db, status) -> []domain.Animal, error
//
//   - UpdateAnimalStatus(ctx, db, id, status, reason) -> error
//     Unconditional overwrite; ErrNotFound when no row matched.
//
//   - SwapAnimalStatus(ctx, db, id, from, to) -> (bool, error)
//     Compare-and-swap; reports whether the row was in status `from`.
package repo

import (
	"context"

	"gorm.io/gorm"

	"github.com/tbourn/go-shelter-backend/internal/domain"
)

// ErrNotFound is returned when a requested record does not exist.
// It aliases gorm.ErrRecordNotFound for convenience and consistency
// across the service layer and handlers.
var ErrNotFound = gorm.ErrRecordNotFound

// CreateAnimal inserts a into the animals table.
func CreateAnimal(ctx context.Context, db *gorm.DB, a *domain.Animal) error {
	return db.WithContext(ctx).Create(a).Error
}

// GetAnimal fetches a single animal by id, or ErrNotFound.
func GetAnimal(ctx context.Context, db *gorm.DB, id uint) (*domain.Animal, error) {
	var a domain.Animal
	if err := db.WithContext(ctx).Where("id = ?", id).First(&a).Error; err != nil {
		return nil, err
	}
	return &a, nil
}

// ListAnimals returns every animal ordered by id ascending.
func ListAnimals(ctx context.Context, db *gorm.DB) ([]domain.Animal, error) {
	out := []domain.Animal{}
	err := db.WithContext(ctx).Order("id asc").Find(&out).Error
	return out, err
}

// ListAnimalsByStatus returns animals in the given status, id ascending.
func ListAnimalsByStatus(ctx context.Context, db *gorm.DB, status domain.AnimalStatus) ([]domain.Animal, error) {
	out := []domain.Animal{}
	err := db.WithContext(ctx).
		Where("status = ?", status).
		Order("id asc").
		Find(&out).Error
	return out, err
}

// UpdateAnimalStatus overwrites the status and reason of animal id. If no
// rows are affected it returns ErrNotFound.
func UpdateAnimalStatus(ctx context.Context, db *gorm.DB, id uint, status domain.AnimalStatus, reason string) error {
	res := db.WithContext(ctx).
		Model(&domain.Animal{}).
		Where("id = ?", id).
		Updates(map[string]any{"status": status, "status_reason": reason})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// SwapAnimalStatus moves animal id from status `from` to `to` only if it is
// currently in `from`. It reports whether the swap happened.
func SwapAnimalStatus(ctx context.Context, db *gorm.DB, id uint, from, to domain.AnimalStatus) (bool, error) {
	res := db.WithContext(ctx).
		Model(&domain.Animal{}).
		Where("id = ? AND status = ?", id, from).
		Updates(map[string]any{"status": to, "status_reason": ""})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
