// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the User model.
package repo

import (
	"context"

	"gorm.io/gorm"

	"github.com/tbourn/go-shelter-backend/internal/domain"
)

// CreateUser inserts u. A duplicate username surfaces as the raw driver
// error; see IsDuplicate.
func CreateUser(ctx context.Context, db *gorm.DB, u *domain.User) error {
	return db.WithContext(ctx).Create(u).Error
}

// GetUser fetches a user by id, or ErrNotFound.
func GetUser(ctx context.Context, db *gorm.DB, id uint) (*domain.User, error) {
	var u domain.User
	if err := db.WithContext(ctx).Where("id = ?", id).First(&u).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

// FindUserByCredentials matches username, stored password, and role
// exactly, or returns ErrNotFound.
func FindUserByCredentials(ctx context.Context, db *gorm.DB, username, password string, role domain.Role) (*domain.User, error) {
	var u domain.User
	err := db.WithContext(ctx).
		Where("username = ? AND password = ? AND role = ?", username, password, role).
		First(&u).Error
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// FindUserByUsernameRole returns the user holding username with role, or
// ErrNotFound.
func FindUserByUsernameRole(ctx context.Context, db *gorm.DB, username string, role domain.Role) (*domain.User, error) {
	var u domain.User
	err := db.WithContext(ctx).
		Where("username = ? AND role = ?", username, role).
		First(&u).Error
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// CountUsers returns the number of registered users.
func CountUsers(ctx context.Context, db *gorm.DB) (int64, error) {
	var n int64
	err := db.WithContext(ctx).Model(&domain.User{}).Count(&n).Error
	return n, err
}
