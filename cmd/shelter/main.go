// Command shelter runs the interactive console for shelter staff and
// clients against the same store as the API.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"

	"github.com/tbourn/go-shelter-backend/internal/app"
	"github.com/tbourn/go-shelter-backend/internal/config"
	"github.com/tbourn/go-shelter-backend/internal/console"
	"github.com/tbourn/go-shelter-backend/internal/services"
	"github.com/tbourn/go-shelter-backend/internal/sysutil"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	_ = godotenv.Load()

	var (
		dbPath   string
		driver   string
		dsn      string
		strict   string
		logLevel string
		noSeed   bool
	)
	flagSet := pflag.NewFlagSet("shelter", pflag.ContinueOnError)
	flagSet.StringVar(&driver, "driver", "", "store driver: sqlite or postgres (overrides DB_DRIVER)")
	flagSet.StringVar(&dbPath, "db", "", "SQLite file path (overrides DB_PATH)")
	flagSet.StringVar(&dsn, "dsn", "", "PostgreSQL DSN (overrides DB_DSN)")
	flagSet.StringVar(&strict, "strict", "", "reject decisions on non-pending requests: true/false (overrides ADOPTION_STRICT)")
	flagSet.StringVar(&logLevel, "log-level", "", "log level written to stderr (default warn)")
	flagSet.BoolVar(&noSeed, "no-seed", false, "do not load the seed fixture")
	flagSet.BoolP("help", "h", false, "show help")

	if err := flagSet.Parse(os.Args[1:]); err != nil {
		if err == pflag.ErrHelp {
			return nil
		}
		return err
	}
	if help, _ := flagSet.GetBool("help"); help {
		fmt.Fprintf(os.Stderr, "Usage:\n  shelter [flags]\n\nFlags:\n%s", flagSet.FlagUsages())
		return nil
	}
	if args := flagSet.Args(); len(args) > 0 {
		return fmt.Errorf("unexpected argument: %s", args[0])
	}

	// Flags win over the environment.
	if driver != "" {
		os.Setenv("DB_DRIVER", driver)
	}
	if dsn != "" {
		os.Setenv("DB_DSN", dsn)
	}
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	cfg.DB.Path = sysutil.FirstNonEmpty(dbPath, cfg.DB.Path)
	if strict != "" {
		cfg.AdoptionStrict = sysutil.IsTruthy(strict)
	}
	if noSeed {
		cfg.Seed.Enabled = false
	}

	// Logs go to stderr so they never interleave with the menus.
	sysutil.SetLogLevel(sysutil.FirstNonEmpty(logLevel, "warn"))
	log := sysutil.NewLogger(os.Stderr, true, "shelter")

	ctx := context.Background()

	db, err := app.OpenStore(ctx, cfg, log)
	if err != nil {
		return err
	}
	if sqlDB, err := db.DB(); err == nil {
		defer sqlDB.Close()
	}

	scheme, err := services.ParsePasswordScheme(cfg.PasswordScheme)
	if err != nil {
		return err
	}
	adoption := services.NewAdoptionService(db)
	adoption.Strict = cfg.AdoptionStrict

	sh := console.New(
		services.NewAnimalService(db),
		adoption,
		&services.UserService{DB: db, Scheme: scheme},
		console.Options{In: os.Stdin, Out: os.Stdout},
	)
	return sh.Run(ctx)
}
