// Package services defines the business logic for animals, adoption requests,
// and users. This file centralizes the service-level error values so that
// they can be consistently returned by service methods and checked by callers.
//
// Translation into user-facing messages or HTTP status codes is performed by
// the presentation layers (HTTP handlers, console shell).
package services

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation is matched by every *ValidationError.
	ErrValidation = errors.New("invalid input")

	// ErrNotFound is the parent of the entity-specific not-found errors.
	ErrNotFound = errors.New("not found")

	// ErrAnimalNotFound indicates that the animal id does not exist.
	ErrAnimalNotFound = fmt.Errorf("animal %w", ErrNotFound)

	// ErrRequestNotFound indicates that the adoption request id does not exist.
	ErrRequestNotFound = fmt.Errorf("adoption request %w", ErrNotFound)

	// ErrAnimalUnavailable is returned when a request targets an animal that
	// is missing or no longer available.
	ErrAnimalUnavailable = errors.New("animal is not available for adoption")

	// ErrAuthentication is returned for any credential or role mismatch.
	ErrAuthentication = errors.New("invalid credentials")

	// ErrRequestNotCancellable is returned when the request does not exist,
	// belongs to another client, or is no longer pending.
	ErrRequestNotCancellable = errors.New("request cannot be cancelled")

	// ErrRequestNotPending is returned in strict mode when approving or
	// rejecting a request that has already been decided.
	ErrRequestNotPending = errors.New("request is not pending")

	// ErrForbidden is returned when the session's role may not perform the
	// operation.
	ErrForbidden = errors.New("operation not permitted for this role")
)

// ValidationError describes malformed input on a single field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Reason
}

// Is makes errors.Is(err, ErrValidation) hold for any *ValidationError.
func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

func invalid(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}
