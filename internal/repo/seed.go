// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file loads fixture data into an empty database.
package repo

import (
	"context"
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
	"gorm.io/gorm"

	"github.com/tbourn/go-shelter-backend/internal/domain"
)

//go:embed seed.yaml
var defaultSeed []byte

// SeedAnimal is a fixture row for the animals table.
type SeedAnimal struct {
	Name         string `yaml:"name"`
	Species      string `yaml:"species"`
	Breed        string `yaml:"breed"`
	Age          int    `yaml:"age"`
	ArrivalDate  string `yaml:"arrival_date"`
	HealthStatus string `yaml:"health_status"`
}

// SeedUser is a fixture row for the users table. Password is the plain
// credential; Seed passes it through the supplied hash function.
type SeedUser struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	Role     string `yaml:"role"`
	Name     string `yaml:"name"`
	Phone    string `yaml:"phone"`
}

// SeedData is the fixture document.
type SeedData struct {
	Animals []SeedAnimal `yaml:"animals"`
	Users   []SeedUser   `yaml:"users"`
}

// LoadSeed parses the fixture at path, or the embedded default when path is
// empty.
func LoadSeed(path string) (SeedData, error) {
	raw := defaultSeed
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return SeedData{}, err
		}
		raw = b
	}
	var data SeedData
	if err := yaml.Unmarshal(raw, &data); err != nil {
		return SeedData{}, fmt.Errorf("parse seed: %w", err)
	}
	return data, nil
}

// Seed inserts data's animals when the animals table is empty and data's
// users when the users table is empty, in one transaction. hash turns a
// plain password into its stored form; nil stores it as is.
func Seed(ctx context.Context, db *gorm.DB, data SeedData, hash func(string) (string, error)) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var animals int64
		if err := tx.Model(&domain.Animal{}).Count(&animals).Error; err != nil {
			return err
		}
		if animals == 0 {
			for _, sa := range data.Animals {
				age := sa.Age
				a := &domain.Animal{
					Name:         sa.Name,
					Species:      sa.Species,
					Breed:        sa.Breed,
					Age:          &age,
					ArrivalDate:  sa.ArrivalDate,
					HealthStatus: sa.HealthStatus,
					Status:       domain.AnimalAvailable,
				}
				if err := tx.Create(a).Error; err != nil {
					return fmt.Errorf("seed animal %q: %w", sa.Name, err)
				}
			}
		}

		users, err := CountUsers(ctx, tx)
		if err != nil {
			return err
		}
		if users > 0 {
			return nil
		}
		for _, su := range data.Users {
			role, ok := domain.ParseRole(su.Role)
			if !ok {
				return fmt.Errorf("seed user %q: unknown role %q", su.Username, su.Role)
			}
			pw := su.Password
			if hash != nil {
				if pw, err = hash(su.Password); err != nil {
					return fmt.Errorf("seed user %q: %w", su.Username, err)
				}
			}
			u := &domain.User{Username: su.Username, Password: pw, Role: role, Name: su.Name, Phone: su.Phone}
			if err := tx.Create(u).Error; err != nil {
				return fmt.Errorf("seed user %q: %w", su.Username, err)
			}
		}
		return nil
	})
}
