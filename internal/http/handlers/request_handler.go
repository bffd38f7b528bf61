// Adoption request HTTP handlers.
//
// Admin:
//   - GET  /admin/requests               (all requests, newest first, ETag)
//   - POST /admin/requests/{id}/approve
//   - POST /admin/requests/{id}/reject
//
// Client:
//   - POST /client/requests              (file a request)
//   - GET  /client/requests              (own requests, cancelled hidden)
//   - POST /client/requests/{id}/cancel
//
// Idempotency:
// A client may send an Idempotency-Key header with POST /client/requests.
// Retrying with the same key returns the originally filed request with
// `Idempotency-Replayed: true` and status 200 instead of filing a second one.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-shelter-backend/internal/domain"
	"github.com/tbourn/go-shelter-backend/internal/http/middleware"
	"github.com/tbourn/go-shelter-backend/internal/utils"
)

// HeaderIdempotencyReplayed marks a response served from an earlier
// submission.
const HeaderIdempotencyReplayed = "Idempotency-Replayed"

// CreateAdoptionRequest is the JSON payload for filing a request.
type CreateAdoptionRequest struct {
	AnimalID uint `json:"animal_id" binding:"required,min=1" example:"2"`
}

// ListRequestsResponse wraps a page of requests and pagination information.
type ListRequestsResponse struct {
	Requests   []domain.RequestView `json:"requests"`
	Pagination Pagination           `json:"pagination"`
}

// ListRequests godoc
// @ID          listRequests
// @Summary     List all adoption requests
// @Description Returns every request with client name, phone and animal name, newest first. Supports weak ETag via If-None-Match.
// @Tags        Admin
// @Produce     json
// @Security    BasicAuth
//
// @Param       If-None-Match  header  string  false "Return 304 if ETag matches"
// @Param       page           query   int     false "Page number"     minimum(1) default(1)
// @Param       page_size      query   int     false "Items per page"  minimum(1) maximum(200) default(50)
//
// @Success     200  {object} handlers.ListRequestsResponse
// @Header      200  {string} ETag "Weak ETag for current result"
// @Success     304  {string} string "Not Modified"
// @Failure     401  {object} handlers.ErrorResponse "Unauthorized"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /admin/requests [get]
func (h *Handlers) ListRequests(c *gin.Context) {
	if notModified(c, "requests", h.adoption.Stats) {
		return
	}
	items, err := h.adoption.ListAll(c.Request.Context())
	if err != nil {
		failErr(c, err)
		return
	}
	writeRequestPage(c, items)
}

// ApproveRequest godoc
// @ID          approveRequest
// @Summary     Approve an adoption request
// @Description Marks the request approved and the animal adopted, atomically. Other pending requests for the animal are left untouched.
// @Tags        Admin
// @Produce     json
// @Security    BasicAuth
//
// @Param       id  path  int  true  "Request ID"  minimum(1)
//
// @Success     204  {string} string "No Content"
// @Failure     400  {object} handlers.ErrorResponse "Bad id"
// @Failure     401  {object} handlers.ErrorResponse "Unauthorized"
// @Failure     404  {object} handlers.ErrorResponse "Request not found"
// @Failure     409  {object} handlers.ErrorResponse "Request not pending or animal unavailable (strict mode)"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /admin/requests/{id}/approve [post]
func (h *Handlers) ApproveRequest(c *gin.Context) {
	id, okID := pathID(c)
	if !okID {
		return
	}
	if err := h.adoption.ApproveRequest(c.Request.Context(), id); err != nil {
		failErr(c, err)
		return
	}
	noContent(c)
}

// RejectRequest godoc
// @ID          rejectRequest
// @Summary     Reject an adoption request
// @Tags        Admin
// @Produce     json
// @Security    BasicAuth
//
// @Param       id  path  int  true  "Request ID"  minimum(1)
//
// @Success     204  {string} string "No Content"
// @Failure     400  {object} handlers.ErrorResponse "Bad id"
// @Failure     401  {object} handlers.ErrorResponse "Unauthorized"
// @Failure     404  {object} handlers.ErrorResponse "Request not found"
// @Failure     409  {object} handlers.ErrorResponse "Request not pending (strict mode)"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /admin/requests/{id}/reject [post]
func (h *Handlers) RejectRequest(c *gin.Context) {
	id, okID := pathID(c)
	if !okID {
		return
	}
	if err := h.adoption.RejectRequest(c.Request.Context(), id); err != nil {
		failErr(c, err)
		return
	}
	noContent(c)
}

// CreateRequest godoc
// @ID          createAdoptionRequest
// @Summary     File an adoption request
// @Description Files a pending request for an available animal. Supports idempotent retries via the Idempotency-Key header.
// @Tags        Client
// @Accept      json
// @Produce     json
// @Security    BasicAuth
//
// @Param       Idempotency-Key  header  string                           false "Idempotency key for safe retries (UUID recommended)"
// @Param       body             body    handlers.CreateAdoptionRequest  true  "Target animal"
//
// @Success     201  {object} domain.AdoptionRequest
// @Success     200  {object} domain.AdoptionRequest "Replayed"
// @Header      200  {string} Idempotency-Replayed "true when served from an earlier submission"
// @Failure     400  {object} handlers.ErrorResponse "Bad request"
// @Failure     401  {object} handlers.ErrorResponse "Unauthorized"
// @Failure     409  {object} handlers.ErrorResponse "Animal unavailable"
// @Failure     429  {object} handlers.ErrorResponse "Too many requests"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /client/requests [post]
func (h *Handlers) CreateRequest(c *gin.Context) {
	sess, okSess := h.session(c)
	if !okSess {
		return
	}
	var req CreateAdoptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "animal_id must be a positive integer")
		return
	}

	key, _ := middleware.GetIdempotencyKey(c)
	ar, replayed, err := h.adoption.CreateRequestIdempotent(c.Request.Context(), sess, req.AnimalID, key)
	if err != nil {
		failErr(c, err)
		return
	}
	if replayed {
		c.Header(HeaderIdempotencyReplayed, "true")
		ok(c, http.StatusOK, ar)
		return
	}
	ok(c, http.StatusCreated, ar)
}

// ListMyRequests godoc
// @ID          listMyRequests
// @Summary     List my adoption requests
// @Description Returns the caller's requests, newest first, excluding cancelled ones.
// @Tags        Client
// @Produce     json
// @Security    BasicAuth
//
// @Param       page       query  int  false "Page number"     minimum(1) default(1)
// @Param       page_size  query  int  false "Items per page"  minimum(1) maximum(200) default(50)
//
// @Success     200  {object} handlers.ListRequestsResponse
// @Failure     401  {object} handlers.ErrorResponse "Unauthorized"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /client/requests [get]
func (h *Handlers) ListMyRequests(c *gin.Context) {
	sess, okSess := h.session(c)
	if !okSess {
		return
	}
	items, err := h.adoption.ListByClient(c.Request.Context(), sess)
	if err != nil {
		failErr(c, err)
		return
	}
	writeRequestPage(c, items)
}

// CancelRequest godoc
// @ID          cancelRequest
// @Summary     Cancel one of my pending requests
// @Tags        Client
// @Produce     json
// @Security    BasicAuth
//
// @Param       id  path  int  true  "Request ID"  minimum(1)
//
// @Success     204  {string} string "No Content"
// @Failure     400  {object} handlers.ErrorResponse "Bad id"
// @Failure     401  {object} handlers.ErrorResponse "Unauthorized"
// @Failure     409  {object} handlers.ErrorResponse "Missing, not owned, or no longer pending"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /client/requests/{id}/cancel [post]
func (h *Handlers) CancelRequest(c *gin.Context) {
	sess, okSess := h.session(c)
	if !okSess {
		return
	}
	id, okID := pathID(c)
	if !okID {
		return
	}
	if err := h.adoption.CancelRequest(c.Request.Context(), sess, id); err != nil {
		failErr(c, err)
		return
	}
	noContent(c)
}

func writeRequestPage(c *gin.Context, items []domain.RequestView) {
	page, pageSize := clampPagination(c)
	p := utils.Paginate(items, page, pageSize)
	ok(c, http.StatusOK, ListRequestsResponse{Requests: p.Items, Pagination: paginationOf(p)})
}
