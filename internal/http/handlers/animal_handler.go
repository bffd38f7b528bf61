// Animal HTTP handlers.
//
//   - GET  /admin/animals              (every animal, ETag support)
//   - POST /admin/animals              (register an arrival)
//   - PUT  /admin/animals/{id}/status  (change availability)
//   - GET  /client/animals             (available animals only)
package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-shelter-backend/internal/domain"
	"github.com/tbourn/go-shelter-backend/internal/services"
	"github.com/tbourn/go-shelter-backend/internal/utils"
)

// CreateAnimalRequest is the JSON payload for registering an animal.
type CreateAnimalRequest struct {
	Name         string `json:"name"          example:"Rex"`
	Species      string `json:"species"       example:"dog"`
	Breed        string `json:"breed"         example:"Beagle"`
	Age          *int   `json:"age"           example:"5"`
	HealthStatus string `json:"health_status" example:"healthy"`
	// ArrivalDate defaults to today when empty.
	ArrivalDate string `json:"arrival_date" example:"2024-03-01"`
}

// UpdateAnimalStatusRequest is the JSON payload for a status change. When
// Status is empty the status is derived from Reason the way free-text
// entries are interpreted: "available", "adopted (...)", or anything else
// meaning removed with that reason.
type UpdateAnimalStatusRequest struct {
	Status string `json:"status" enums:"available,adopted,removed" example:"removed"`
	Reason string `json:"reason" example:"transferred to partner shelter"`
}

// ListAnimalsResponse wraps a page of animals and pagination information.
type ListAnimalsResponse struct {
	Animals    []domain.Animal `json:"animals"`
	Pagination Pagination      `json:"pagination"`
}

// ListAnimals godoc
// @ID          listAnimals
// @Summary     List all animals
// @Description Returns every animal regardless of status, ordered by id. Supports weak ETag via If-None-Match.
// @Tags        Admin
// @Produce     json
// @Security    BasicAuth
//
// @Param       If-None-Match  header  string  false "Return 304 if ETag matches"
// @Param       page           query   int     false "Page number"     minimum(1) default(1)
// @Param       page_size      query   int     false "Items per page"  minimum(1) maximum(200) default(50)
//
// @Success     200  {object} handlers.ListAnimalsResponse
// @Header      200  {string} ETag "Weak ETag for current result"
// @Success     304  {string} string "Not Modified"
// @Failure     401  {object} handlers.ErrorResponse "Unauthorized"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /admin/animals [get]
func (h *Handlers) ListAnimals(c *gin.Context) {
	if notModified(c, "animals", h.animals.Stats) {
		return
	}
	items, err := h.animals.ListAll(c.Request.Context())
	if err != nil {
		failErr(c, err)
		return
	}
	page, pageSize := clampPagination(c)
	p := utils.Paginate(items, page, pageSize)
	ok(c, http.StatusOK, ListAnimalsResponse{Animals: p.Items, Pagination: paginationOf(p)})
}

// ListAvailableAnimals godoc
// @ID          listAvailableAnimals
// @Summary     List adoptable animals
// @Description Returns the animals that currently accept adoption requests, ordered by id.
// @Tags        Client
// @Produce     json
// @Security    BasicAuth
//
// @Param       page       query  int  false "Page number"     minimum(1) default(1)
// @Param       page_size  query  int  false "Items per page"  minimum(1) maximum(200) default(50)
//
// @Success     200  {object} handlers.ListAnimalsResponse
// @Failure     401  {object} handlers.ErrorResponse "Unauthorized"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /client/animals [get]
func (h *Handlers) ListAvailableAnimals(c *gin.Context) {
	items, err := h.animals.ListAvailable(c.Request.Context())
	if err != nil {
		failErr(c, err)
		return
	}
	page, pageSize := clampPagination(c)
	p := utils.Paginate(items, page, pageSize)
	ok(c, http.StatusOK, ListAnimalsResponse{Animals: p.Items, Pagination: paginationOf(p)})
}

// CreateAnimal godoc
// @ID          createAnimal
// @Summary     Register an animal
// @Description Adds a new available animal. Fields are stored as submitted, trimmed.
// @Tags        Admin
// @Accept      json
// @Produce     json
// @Security    BasicAuth
//
// @Param       body  body  handlers.CreateAnimalRequest  true  "Animal"
//
// @Success     201  {object} domain.Animal
// @Failure     400  {object} handlers.ErrorResponse "Validation failed"
// @Failure     401  {object} handlers.ErrorResponse "Unauthorized"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /admin/animals [post]
func (h *Handlers) CreateAnimal(c *gin.Context) {
	var req CreateAnimalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}
	a, err := h.animals.AddAnimal(c.Request.Context(), services.AnimalInput{
		Name:         req.Name,
		Species:      req.Species,
		Breed:        req.Breed,
		Age:          req.Age,
		HealthStatus: req.HealthStatus,
		ArrivalDate:  req.ArrivalDate,
	})
	if err != nil {
		failErr(c, err)
		return
	}
	c.Header("Location", c.FullPath()+"/"+strconv.FormatUint(uint64(a.ID), 10))
	ok(c, http.StatusCreated, a)
}

// UpdateAnimalStatus godoc
// @ID          updateAnimalStatus
// @Summary     Change an animal's status
// @Description Sets the status (and optional reason) of an animal. Does not touch adoption requests.
// @Tags        Admin
// @Accept      json
// @Produce     json
// @Security    BasicAuth
//
// @Param       id    path  int                                  true  "Animal ID"  minimum(1)
// @Param       body  body  handlers.UpdateAnimalStatusRequest  true  "New status"
//
// @Success     204  {string} string "No Content"
// @Failure     400  {object} handlers.ErrorResponse "Validation failed"
// @Failure     401  {object} handlers.ErrorResponse "Unauthorized"
// @Failure     404  {object} handlers.ErrorResponse "Animal not found"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /admin/animals/{id}/status [put]
func (h *Handlers) UpdateAnimalStatus(c *gin.Context) {
	id, okID := pathID(c)
	if !okID {
		return
	}
	var req UpdateAnimalStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}

	status := domain.AnimalStatus(strings.ToLower(strings.TrimSpace(req.Status)))
	reason := strings.TrimSpace(req.Reason)
	if status == "" {
		var err error
		if status, reason, err = services.StatusFromReason(req.Reason); err != nil {
			failErr(c, err)
			return
		}
	}

	if err := h.animals.SetStatus(c.Request.Context(), id, status, reason); err != nil {
		failErr(c, err)
		return
	}
	noContent(c)
}
