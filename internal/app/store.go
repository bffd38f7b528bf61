// Package app assembles the pieces both binaries share: the store, its
// schema and fixture.
package app

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/tbourn/go-shelter-backend/internal/config"
	"github.com/tbourn/go-shelter-backend/internal/repo"
	"github.com/tbourn/go-shelter-backend/internal/services"
)

// OpenStore connects to the configured database, migrates the schema and,
// when enabled, loads the seed fixture into empty tables. Fixture users are
// registered with the configured password scheme.
func OpenStore(ctx context.Context, cfg config.Config, log zerolog.Logger) (*gorm.DB, error) {
	scheme, err := services.ParsePasswordScheme(cfg.PasswordScheme)
	if err != nil {
		return nil, err
	}

	db, err := repo.Open(repo.Options{
		Driver:       cfg.DB.Driver,
		Path:         cfg.DB.Path,
		DSN:          cfg.DB.DSN,
		Tracing:      cfg.OTEL.Enabled,
		Silent:       cfg.GinMode == "release",
		MaxOpenConns: cfg.DB.MaxOpenConns,
	})
	if err != nil {
		return nil, fmt.Errorf("open %s store: %w", cfg.DB.Driver, err)
	}
	if err := repo.AutoMigrate(db); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}

	if !cfg.Seed.Enabled {
		log.Debug().Msg("seeding disabled")
		return db, nil
	}
	data, err := repo.LoadSeed(cfg.Seed.File)
	if err != nil {
		return nil, err
	}
	if err := repo.Seed(ctx, db, repo.SeedData{Animals: data.Animals}, nil); err != nil {
		return nil, err
	}
	if err := seedUsers(ctx, db, scheme, data.Users); err != nil {
		return nil, err
	}
	log.Info().
		Str("driver", cfg.DB.Driver).
		Str("seed_file", cfg.Seed.File).
		Int("fixture_animals", len(data.Animals)).
		Int("fixture_users", len(data.Users)).
		Msg("store ready")
	return db, nil
}

// seedUsers registers the fixture users through the user directory when no
// user exists yet, so fixture rows get the same validation and password
// hashing as any other account.
func seedUsers(ctx context.Context, db *gorm.DB, scheme services.PasswordScheme, users []repo.SeedUser) error {
	n, err := repo.CountUsers(ctx, db)
	if err != nil || n > 0 {
		return err
	}
	dir := &services.UserService{DB: db, Scheme: scheme}
	for _, su := range users {
		_, err := dir.Register(ctx, services.NewUser{
			Username: su.Username,
			Password: su.Password,
			Role:     su.Role,
			Name:     su.Name,
			Phone:    su.Phone,
		})
		if err != nil {
			return fmt.Errorf("seed user %q: %w", su.Username, err)
		}
	}
	return nil
}
