// Package services – AnimalService
//
// This file implements the animal registry: validated creation, listings,
// and the administrative status override. The registry is the authoritative
// source of an animal's availability; AdoptionService reads and writes the
// same rows inside its own transactions.
package services

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/text/cases"
	"gorm.io/gorm"

	"github.com/tbourn/go-shelter-backend/internal/domain"
	"github.com/tbourn/go-shelter-backend/internal/repo"
)

// AnimalInput carries the fields accepted by AddAnimal. Age is a pointer so
// a missing value can be told apart from zero.
type AnimalInput struct {
	Name         string `json:"name"`
	Species      string `json:"species"`
	Breed        string `json:"breed"`
	Age          *int   `json:"age"`
	HealthStatus string `json:"health_status"`
	ArrivalDate  string `json:"arrival_date"`
}

// AnimalService manages shelter animals.
type AnimalService struct {
	DB *gorm.DB

	now func() time.Time
}

// NewAnimalService constructs an AnimalService with default settings.
func NewAnimalService(db *gorm.DB) *AnimalService {
	return &AnimalService{DB: db, now: time.Now}
}

func (s *AnimalService) clock() time.Time {
	if s.now != nil {
		return s.now()
	}
	return time.Now()
}

// AddAnimal validates in and stores a new available animal.
//
// Name and species are required after trimming, age is required and must
// not be negative, and ArrivalDate must be YYYY-MM-DD when given (today
// otherwise). Text fields are stored as submitted, minus surrounding
// whitespace. Violations are reported as *ValidationError.
func (s *AnimalService) AddAnimal(ctx context.Context, in AnimalInput) (*domain.Animal, error) {
	ctx, span := otel.Tracer("services/AnimalService").Start(ctx, "AddAnimal")
	defer span.End()

	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, invalid("name", "is required")
	}
	species := strings.TrimSpace(in.Species)
	if species == "" {
		return nil, invalid("species", "is required")
	}
	if in.Age == nil {
		return nil, invalid("age", "is required")
	}
	if *in.Age < 0 {
		return nil, invalid("age", "must not be negative")
	}

	arrival := strings.TrimSpace(in.ArrivalDate)
	if arrival == "" {
		arrival = s.clock().Format(domain.DateLayout)
	} else if _, err := time.Parse(domain.DateLayout, arrival); err != nil {
		return nil, invalid("arrival_date", "must be YYYY-MM-DD")
	}

	age := *in.Age
	a := &domain.Animal{
		Name:         name,
		Species:      species,
		Breed:        strings.TrimSpace(in.Breed),
		Age:          &age,
		HealthStatus: strings.TrimSpace(in.HealthStatus),
		ArrivalDate:  arrival,
		Status:       domain.AnimalAvailable,
	}
	if err := repo.CreateAnimal(ctx, s.DB, a); err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.Int("animal.id", int(a.ID)))
	return a, nil
}

// Get returns a single animal or ErrAnimalNotFound.
func (s *AnimalService) Get(ctx context.Context, id uint) (*domain.Animal, error) {
	a, err := repo.GetAnimal(ctx, s.DB, id)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, ErrAnimalNotFound
	}
	return a, err
}

// ListAll returns every animal ordered by id.
func (s *AnimalService) ListAll(ctx context.Context) ([]domain.Animal, error) {
	return repo.ListAnimals(ctx, s.DB)
}

// ListAvailable returns the animals that can receive adoption requests,
// ordered by id.
func (s *AnimalService) ListAvailable(ctx context.Context) ([]domain.Animal, error) {
	return repo.ListAnimalsByStatus(ctx, s.DB, domain.AnimalAvailable)
}

// SetStatus overwrites the status and reason of animal id. It returns
// ErrAnimalNotFound when no such animal exists.
func (s *AnimalService) SetStatus(ctx context.Context, id uint, status domain.AnimalStatus, reason string) error {
	ctx, span := otel.Tracer("services/AnimalService").Start(ctx, "SetStatus",
		trace.WithAttributes(
			attribute.Int("animal.id", int(id)),
			attribute.String("animal.status", string(status)),
		),
	)
	defer span.End()

	if !status.Valid() {
		return invalid("status", "must be available, adopted or removed")
	}
	err := repo.UpdateAnimalStatus(ctx, s.DB, id, status, strings.TrimSpace(reason))
	if errors.Is(err, repo.ErrNotFound) {
		return ErrAnimalNotFound
	}
	return err
}

// Stats returns the number of animals and the latest modification time,
// used to derive listing ETags.
func (s *AnimalService) Stats(ctx context.Context) (int64, *time.Time, error) {
	return repo.AnimalsStats(ctx, s.DB)
}

// StatusFromReason maps a free-text exit description, as typed by an
// administrator, onto a status tag and the reason to keep alongside it.
// Matching ignores case; any text mentioning adoption counts as adopted.
//
//	"available"                     -> available, ""
//	"adopted"                       -> adopted, ""
//	"adopted (by the neighbours)"   -> adopted, "by the neighbours"
//	"was adopted by the neighbours" -> adopted, "was adopted by the neighbours"
//	"died"                          -> removed, "died"
func StatusFromReason(text string) (domain.AnimalStatus, string, error) {
	text = collapseSpaces(text)
	if text == "" {
		return "", "", invalid("reason", "is required")
	}
	folded := cases.Fold().String(text)
	switch {
	case folded == string(domain.AnimalAvailable):
		return domain.AnimalAvailable, "", nil
	case folded == string(domain.AnimalRemoved):
		return domain.AnimalRemoved, "", nil
	case !strings.Contains(folded, adoptedWord):
		return domain.AnimalRemoved, text, nil
	}
	if len(text) >= len(adoptedWord) && strings.EqualFold(text[:len(adoptedWord)], adoptedWord) {
		rest := strings.TrimSpace(text[len(adoptedWord):])
		return domain.AnimalAdopted, strings.TrimSpace(strings.Trim(rest, "()")), nil
	}
	return domain.AnimalAdopted, text, nil
}

const adoptedWord = string(domain.AnimalAdopted)

// collapseSpaces trims s and collapses inner whitespace runs to one space.
func collapseSpaces(s string) string {
	return whitespaceRE.ReplaceAllString(strings.TrimSpace(s), " ")
}

var whitespaceRE = regexp.MustCompile(`\s+`)
