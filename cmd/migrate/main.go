package main

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/jackc/pgx/v5/stdlib"

	appconfig "github.com/wolfman30/prisoner-profile/internal/config"
	appmigrations "github.com/wolfman30/prisoner-profile/migrations"
	"github.com/wolfman30/prisoner-profile/pkg/logging"
)

// Usage:
//
//	migrate            apply every pending migration
//	migrate down <n>   roll back n migrations
//	migrate force <v>  mark version v as applied after a failed run
func main() {
	cfg := appconfig.Load()
	logger := logging.New(cfg.LogLevel)

	if err := run(cfg.DatabaseURL, os.Args[1:]); err != nil {
		logger.Error("migration failed", "error", err)
		os.Exit(1)
	}
}

func run(databaseURL string, args []string) error {
	if strings.TrimSpace(databaseURL) == "" {
		return errors.New("DATABASE_URL is required")
	}

	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer func() { _ = db.Close() }()

	if err := db.Ping(); err != nil {
		return fmt.Errorf("ping db: %w", err)
	}

	dbDriver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("db driver: %w", err)
	}
	srcDriver, err := iofs.New(appmigrations.FS, ".")
	if err != nil {
		return fmt.Errorf("source driver: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", srcDriver, "postgres", dbDriver)
	if err != nil {
		return fmt.Errorf("create migrator: %w", err)
	}
	defer func() { _, _ = m.Close() }()

	command, n, err := parseArgs(args)
	if err != nil {
		return err
	}
	switch command {
	case "force":
		if err := m.Force(n); err != nil {
			return fmt.Errorf("force version: %w", err)
		}
		fmt.Printf("forced version to %d\n", n)
		return nil
	case "down":
		if err := m.Steps(-n); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			return fmt.Errorf("migrate down: %w", err)
		}
	default:
		if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			return fmt.Errorf("migrate up: %w", err)
		}
	}
	fmt.Println("migrations complete")
	return nil
}

func parseArgs(args []string) (string, int, error) {
	if len(args) == 0 || args[0] == "up" {
		return "up", 0, nil
	}
	command := args[0]
	if command != "force" && command != "down" {
		return "", 0, fmt.Errorf("unknown command %q", command)
	}
	if len(args) < 2 {
		return "", 0, fmt.Errorf("%s requires a number", command)
	}
	n, err := strconv.Atoi(args[1])
	if err != nil || (command == "down" && n < 1) {
		return "", 0, fmt.Errorf("invalid %s argument %q", command, args[1])
	}
	return command, n, nil
}
