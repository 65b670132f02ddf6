package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"os"
	"strconv"
	"time"

	identityapp "github.com/aquaportal/backend/internal/application/identity"
	"github.com/aquaportal/backend/internal/infrastructure/config"
	"github.com/aquaportal/backend/internal/infrastructure/logger"
	"github.com/aquaportal/backend/internal/infrastructure/migration"
	"github.com/aquaportal/backend/internal/infrastructure/persistence"
	_ "github.com/lib/pq"
	"go.uber.org/zap"
)

// adminPasswordEnv supplies the bootstrap password so it stays out of shell history
const adminPasswordEnv = "PORTAL_ADMIN_PASSWORD"

func main() {
	var logLevel string
	flag.StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		printUsage()
		os.Exit(1)
	}
	command := args[0]

	log, err := logger.New(logger.Config{
		Level:  logLevel,
		Format: "console",
		Output: "stdout",
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	// list reads the embedded files only
	if command == "list" {
		names, err := migration.List()
		if err != nil {
			log.Fatal("Failed to list migrations", zap.Error(err))
		}
		log.Info("Available migrations", zap.Int("count", len(names)))
		for _, name := range names {
			fmt.Println("  -", name)
		}
		return
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration", zap.Error(err))
	}

	if command == "bootstrap-admin" {
		bootstrapAdmin(cfg, log, args[1:])
		return
	}

	db, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		log.Fatal("Failed to ping database", zap.Error(err))
	}

	m, err := migration.New(db, log)
	if err != nil {
		log.Fatal("Failed to create migrator", zap.Error(err))
	}
	defer m.Close()

	log.Info("Migration CLI started", zap.String("command", command))

	switch command {
	case "up":
		if err := m.Up(); err != nil {
			log.Fatal("Migration up failed", zap.Error(err))
		}

	case "down":
		if err := m.Down(); err != nil {
			log.Fatal("Migration down failed", zap.Error(err))
		}

	case "step":
		if len(args) < 2 {
			log.Fatal("Step count required. Usage: migrate step <n>")
		}
		n, err := strconv.Atoi(args[1])
		if err != nil {
			log.Fatal("Invalid step count", zap.String("value", args[1]))
		}
		if err := m.Steps(n); err != nil {
			log.Fatal("Migration step failed", zap.Error(err))
		}

	case "version":
		version, dirty, err := m.Version()
		if err != nil {
			log.Fatal("Failed to get version", zap.Error(err))
		}
		if version == 0 {
			log.Info("No migrations applied")
		} else {
			log.Info("Current migration version",
				zap.Uint("version", version),
				zap.Bool("dirty", dirty),
			)
		}

	case "force":
		if len(args) < 2 {
			log.Fatal("Version required. Usage: migrate force <version>")
		}
		version, err := strconv.Atoi(args[1])
		if err != nil {
			log.Fatal("Invalid version number", zap.String("value", args[1]))
		}
		log.Warn("Forcing migration version - use with caution!")
		if err := m.Force(version); err != nil {
			log.Fatal("Force version failed", zap.Error(err))
		}

	default:
		log.Error("Unknown command", zap.String("command", command))
		printUsage()
		os.Exit(1)
	}
}

// bootstrapAdmin creates the first administrator, or promotes an existing
// account with the same email.
func bootstrapAdmin(cfg *config.Config, log *zap.Logger, args []string) {
	fs := flag.NewFlagSet("bootstrap-admin", flag.ExitOnError)
	email := fs.String("email", "", "Administrator email")
	fullName := fs.String("name", "Administrator", "Administrator full name")
	phone := fs.String("phone", "", "Administrator phone")
	_ = fs.Parse(args)

	password := os.Getenv(adminPasswordEnv)
	if *email == "" || password == "" {
		log.Fatal("Usage: migrate bootstrap-admin -email <email> [-name <name>] with " + adminPasswordEnv + " set")
	}

	db, err := persistence.NewDatabase(&cfg.Database, nil)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() { _ = db.Close() }()

	// Token issuing is not used when seeding
	authService := identityapp.NewAuthService(
		persistence.NewGormAccountRepository(db.DB),
		persistence.NewGormProfileRepository(db.DB),
		persistence.NewGormRegistrationScope(db.DB),
		nil, nil, nil,
	)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	ctx = logger.WithContext(ctx, log)

	profile, err := authService.BootstrapAdmin(ctx, identityapp.RegisterInput{
		Email:    *email,
		Password: password,
		FullName: *fullName,
		Phone:    *phone,
	})
	if err != nil {
		log.Fatal("Failed to bootstrap administrator", zap.Error(err))
	}
	log.Info("Administrator ready",
		zap.String("profile_id", profile.ID.String()),
		zap.String("email", profile.Email),
	)
}

func printUsage() {
	fmt.Println(`Water Portal Database Migration Tool

Usage:
  migrate [flags] <command> [arguments]

Commands:
  up                    Apply all pending migrations
  down                  Roll back all migrations
  step <n>              Apply n migrations (positive=up, negative=down)
  version               Show current migration version
  force <version>       Force set migration version (use with caution)
  list                  List embedded migrations
  bootstrap-admin       Create or promote an administrator account
                        -email <email> [-name <name>] [-phone <phone>]
                        password is read from PORTAL_ADMIN_PASSWORD

Flags:
  -log-level string     Log level: debug, info, warn, error (default: info)

Environment Variables:
  PORTAL_DATABASE_HOST, PORTAL_DATABASE_PORT, PORTAL_DATABASE_USER,
  PORTAL_DATABASE_PASSWORD, PORTAL_DATABASE_DBNAME, PORTAL_DATABASE_SSLMODE

Examples:
  # Apply all pending migrations
  migrate up

  # Roll back the last migration
  migrate step -1

  # Seed the first administrator
  PORTAL_ADMIN_PASSWORD=... migrate bootstrap-admin -email ops@example.com`)
}
