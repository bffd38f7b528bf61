// Package handlers defines HTTP-layer error codes used across all API endpoints.
//
// Codes are lowercase snake_case. Generic codes mirror the HTTP status they
// travel with; domain codes name the adoption rule that was violated so that
// clients can branch on them without parsing messages.
//
// Example response:
//
//	{
//	  "request_id": "e1b9be03-4999-4289-9f03-999b042d65d6",
//	  "code": "animal_unavailable",
//	  "message": "animal is not available for adoption"
//	}
package handlers

import (
	"errors"
	"net/http"

	"github.com/tbourn/go-shelter-backend/internal/services"
)

const (
	ErrCodeBadRequest   = "bad_request"
	ErrCodeUnauthorized = "unauthorized"
	ErrCodeForbidden    = "forbidden"
	ErrCodeNotFound     = "not_found"
	ErrCodeConflict     = "conflict"
	ErrCodeRateLimited  = "too_many_requests"
	ErrCodeInternal     = "internal_error"

	// Domain-specific:
	ErrCodeValidation        = "validation_failed"
	ErrCodeAnimalUnavailable = "animal_unavailable"
	ErrCodeNotCancellable    = "not_cancellable"
	ErrCodeNotPending        = "not_pending"
	ErrCodeMethodNotAllowed  = "method_not_allowed"
)

// statusFor maps a service error onto an HTTP status and error code. Unknown
// errors are internal.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, services.ErrValidation):
		return http.StatusBadRequest, ErrCodeValidation
	case errors.Is(err, services.ErrAuthentication):
		return http.StatusUnauthorized, ErrCodeUnauthorized
	case errors.Is(err, services.ErrForbidden):
		return http.StatusForbidden, ErrCodeForbidden
	case errors.Is(err, services.ErrNotFound):
		return http.StatusNotFound, ErrCodeNotFound
	case errors.Is(err, services.ErrAnimalUnavailable):
		return http.StatusConflict, ErrCodeAnimalUnavailable
	case errors.Is(err, services.ErrRequestNotCancellable):
		return http.StatusConflict, ErrCodeNotCancellable
	case errors.Is(err, services.ErrRequestNotPending):
		return http.StatusConflict, ErrCodeNotPending
	}
	return http.StatusInternalServerError, ErrCodeInternal
}
