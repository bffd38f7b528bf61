// Package handlers exposes the shelter over HTTP.
//
// Handlers are transport-thin: they parse path and body input, call the
// application services, and translate results into HTTP responses
// (including conditional responses for listings). Authentication happens
// upstream in middleware.BasicAuth; handlers only read the stored user.
package handlers

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-shelter-backend/internal/domain"
	"github.com/tbourn/go-shelter-backend/internal/http/middleware"
	"github.com/tbourn/go-shelter-backend/internal/services"
	"github.com/tbourn/go-shelter-backend/internal/utils"
)

//
// Service contracts (context-aware)
//

// AnimalService is the animal registry consumed by the handlers.
type AnimalService interface {
	AddAnimal(ctx context.Context, in services.AnimalInput) (*domain.Animal, error)
	ListAll(ctx context.Context) ([]domain.Animal, error)
	ListAvailable(ctx context.Context) ([]domain.Animal, error)
	SetStatus(ctx context.Context, id uint, status domain.AnimalStatus, reason string) error
	// Stats returns the row count and latest update time, used for ETags.
	Stats(ctx context.Context) (int64, *time.Time, error)
}

// AdoptionService is the adoption workflow consumed by the handlers.
type AdoptionService interface {
	CreateRequestIdempotent(ctx context.Context, sess services.Session, animalID uint, key string) (*domain.AdoptionRequest, bool, error)
	ApproveRequest(ctx context.Context, id uint) error
	RejectRequest(ctx context.Context, id uint) error
	CancelRequest(ctx context.Context, sess services.Session, id uint) error
	ListAll(ctx context.Context) ([]domain.RequestView, error)
	ListByClient(ctx context.Context, sess services.Session) ([]domain.RequestView, error)
	Stats(ctx context.Context) (int64, *time.Time, error)
}

// UserService is the user directory consumed by the handlers.
type UserService interface {
	Authenticate(ctx context.Context, username, password, role string) (*domain.User, error)
	Session(u *domain.User) services.Session
}

//
// Handler wiring
//

// Handlers groups the HTTP endpoints for animals, adoption requests and
// login.
type Handlers struct {
	animals  AnimalService
	adoption AdoptionService
	users    UserService
}

// New constructs a Handlers instance bound to the given services.
func New(animals AnimalService, adoption AdoptionService, users UserService) *Handlers {
	return &Handlers{animals: animals, adoption: adoption, users: users}
}

//
// Shared DTOs
//

// Pagination carries pagination metadata for list responses.
type Pagination struct {
	Page       int  `json:"page"`
	PageSize   int  `json:"page_size"`
	Total      int  `json:"total"`
	TotalPages int  `json:"total_pages"`
	HasNext    bool `json:"has_next"`
}

func paginationOf[T any](p utils.Page[T]) Pagination {
	return Pagination{
		Page:       p.Page,
		PageSize:   p.PageSize,
		Total:      p.Total,
		TotalPages: p.TotalPages,
		HasNext:    p.HasNext,
	}
}

//
// Helpers
//

// clampPagination parses and bounds page and page_size query params to sane
// defaults and limits, returning (page, pageSize).
func clampPagination(c *gin.Context) (page, pageSize int) {
	const (
		defaultPage     = 1
		defaultPageSize = 50
		maxPageSize     = 200
	)
	page = utils.AtoiDefault(c.Query("page"), defaultPage)
	if page < 1 {
		page = 1
	}
	pageSize = utils.AtoiDefault(c.Query("page_size"), defaultPageSize)
	if pageSize < 1 {
		pageSize = 1
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	return
}

// session returns the workflow session of the authenticated caller. It
// writes a 401 and returns false when BasicAuth did not run.
func (h *Handlers) session(c *gin.Context) (services.Session, bool) {
	u, ok := middleware.UserFrom(c)
	if !ok {
		fail(c, http.StatusUnauthorized, ErrCodeUnauthorized, "authentication required")
		return services.Session{}, false
	}
	return h.users.Session(u), true
}

// pathID parses the :id path parameter, writing a 400 on failure.
func pathID(c *gin.Context) (uint, bool) {
	id, err := services.ParseID("id", c.Param("id"))
	if err != nil {
		failErr(c, err)
		return 0, false
	}
	return id, true
}

// notModified sets a weak ETag derived from (count, maxUpdatedAt) and
// answers 304 when If-None-Match matches it. A stats failure skips the
// check.
func notModified(c *gin.Context, scope string, stats func(context.Context) (int64, *time.Time, error)) bool {
	count, maxTS, err := stats(c.Request.Context())
	if err != nil {
		return false
	}
	var ts int64
	if maxTS != nil {
		ts = maxTS.UnixNano()
	}
	etag := fmt.Sprintf(`W/"%s:%d:%d"`, scope, count, ts)
	c.Header("ETag", etag)
	if inm := c.GetHeader("If-None-Match"); inm != "" && inm == etag {
		c.Status(http.StatusNotModified)
		return true
	}
	return false
}
