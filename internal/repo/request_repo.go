// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the
// AdoptionRequest model and its joined RequestView read model.
//
// Status writes come in two flavours:
//   - SetRequestStatus overwrites whatever status the row holds.
//   - TransitionRequest only moves rows that are still in the expected
//     status, optionally scoped to the owning client, so concurrent callers
//     cannot both succeed.
//
// Both report "no row matched" as ErrNotFound.
package repo

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/tbourn/go-shelter-backend/internal/domain"
)

// CreateRequest inserts a pending request for (animalID, clientID) stamped
// with at (UTC).
func CreateRequest(ctx context.Context, db *gorm.DB, animalID, clientID uint, at time.Time) (*domain.AdoptionRequest, error) {
	r := &domain.AdoptionRequest{
		AnimalID:    animalID,
		ClientID:    clientID,
		RequestDate: at.UTC(),
		Status:      domain.RequestPending,
	}
	if err := db.WithContext(ctx).Create(r).Error; err != nil {
		return nil, err
	}
	return r, nil
}

// GetRequest fetches a request by id, or ErrNotFound.
func GetRequest(ctx context.Context, db *gorm.DB, id uint) (*domain.AdoptionRequest, error) {
	var r domain.AdoptionRequest
	if err := db.WithContext(ctx).Where("id = ?", id).First(&r).Error; err != nil {
		return nil, err
	}
	return &r, nil
}

// SetRequestStatus overwrites the status of request id regardless of its
// current value.
func SetRequestStatus(ctx context.Context, db *gorm.DB, id uint, status domain.RequestStatus) error {
	res := db.WithContext(ctx).
		Model(&domain.AdoptionRequest{}).
		Where("id = ?", id).
		Update("status", status)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Transition describes a guarded status change.
type Transition struct {
	ID       uint
	From     domain.RequestStatus
	To       domain.RequestStatus
	ClientID uint // 0 means any owner
}

// TransitionRequest applies t as a single conditional UPDATE. It returns
// ErrNotFound when the request is missing, owned by someone else, or no
// longer in t.From.
func TransitionRequest(ctx context.Context, db *gorm.DB, t Transition) error {
	q := db.WithContext(ctx).
		Model(&domain.AdoptionRequest{}).
		Where("id = ? AND status = ?", t.ID, t.From)
	if t.ClientID != 0 {
		q = q.Where("client_id = ?", t.ClientID)
	}
	res := q.Update("status", t.To)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// requestViewQuery selects the joined request listing columns.
func requestViewQuery(ctx context.Context, db *gorm.DB) *gorm.DB {
	return db.WithContext(ctx).
		Table("adoption_requests AS ar").
		Select(`ar.id, ar.animal_id, ar.client_id, ar.request_date, ar.status,
			u.name AS client_name, u.phone AS client_phone, a.name AS animal_name`).
		Joins("JOIN users u ON u.id = ar.client_id").
		Joins("JOIN animals a ON a.id = ar.animal_id").
		Order("ar.request_date DESC, ar.id DESC")
}

// ListRequestViews returns every request, newest first.
func ListRequestViews(ctx context.Context, db *gorm.DB) ([]domain.RequestView, error) {
	out := []domain.RequestView{}
	err := requestViewQuery(ctx, db).Scan(&out).Error
	return out, err
}

// ListClientRequestViews returns the requests filed by clientID, newest
// first, excluding cancelled ones.
func ListClientRequestViews(ctx context.Context, db *gorm.DB, clientID uint) ([]domain.RequestView, error) {
	out := []domain.RequestView{}
	err := requestViewQuery(ctx, db).
		Where("ar.client_id = ? AND ar.status <> ?", clientID, domain.RequestCancelled).
		Scan(&out).Error
	return out, err
}
