package services

import (
	"errors"
	"fmt"
	"testing"
)

func TestValidationError_IsErrValidation(t *testing.T) {
	err := invalid("age", "must be an integer")
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("expected errors.Is(err, ErrValidation)")
	}
	wrapped := fmt.Errorf("add animal: %w", err)
	var ve *ValidationError
	if !errors.As(wrapped, &ve) || ve.Field != "age" {
		t.Fatalf("expected *ValidationError with field age, got %v", wrapped)
	}
	if err.Error() != "age: must be an integer" {
		t.Fatalf("Error() = %q", err.Error())
	}
	if errors.Is(err, ErrNotFound) {
		t.Fatalf("validation error must not match ErrNotFound")
	}
}

func TestNotFoundHierarchy(t *testing.T) {
	for _, err := range []error{ErrAnimalNotFound, ErrRequestNotFound} {
		if !errors.Is(err, ErrNotFound) {
			t.Fatalf("%v should wrap ErrNotFound", err)
		}
	}
	if errors.Is(ErrAnimalNotFound, ErrRequestNotFound) {
		t.Fatalf("distinct not-found errors must not match each other")
	}
}
