package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/lib/pq"

	"github.com/yourusername/univio-api/internal/config"
	"github.com/yourusername/univio-api/migrations"
)

const usage = `usage: migrate <command>

commands:
  up        apply all pending migrations
  down      roll back the last migration
  force N   set the schema version to N and clear the dirty flag
  cleanup   delete expired verification codes
  version   print the current schema version`

func main() {
	if len(os.Args) < 2 {
		fmt.Println(usage)
		os.Exit(2)
	}

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config/config.yaml"
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	db, err := sql.Open("postgres", cfg.Database.PostgresConnectionString())
	if err != nil {
		log.Fatal(err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		log.Fatalf("Failed to ping database: %v", err)
	}

	if os.Args[1] == "cleanup" {
		if err := cleanup(db); err != nil {
			log.Fatalf("Cleanup failed: %v", err)
		}
		return
	}

	m, err := newMigrator(db)
	if err != nil {
		log.Fatal(err)
	}

	switch os.Args[1] {
	case "up":
		err = m.Up()
	case "down":
		err = m.Steps(-1)
	case "force":
		if len(os.Args) < 3 {
			log.Fatal("force requires a version")
		}
		version, convErr := strconv.Atoi(os.Args[2])
		if convErr != nil {
			log.Fatalf("Invalid version %q: %v", os.Args[2], convErr)
		}
		fmt.Printf("Forcing migration version to %d...\n", version)
		err = m.Force(version)
	case "version":
	default:
		fmt.Println(usage)
		os.Exit(2)
	}

	if errors.Is(err, migrate.ErrNoChange) {
		fmt.Println("No change.")
		err = nil
	}
	if err != nil {
		log.Fatalf("%s failed: %v", os.Args[1], err)
	}

	version, dirty, vErr := m.Version()
	switch {
	case errors.Is(vErr, migrate.ErrNilVersion):
		fmt.Println("No migrations applied.")
	case vErr != nil:
		log.Fatalf("Failed to read version: %v", vErr)
	default:
		fmt.Printf("Schema version %d (dirty: %t)\n", version, dirty)
	}
}

func newMigrator(db *sql.DB) (*migrate.Migrate, error) {
	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to create migrate postgres driver: %w", err)
	}
	source, err := iofs.New(migrations.FS, ".")
	if err != nil {
		return nil, fmt.Errorf("failed to open embedded migrations: %w", err)
	}
	return migrate.NewWithInstance("iofs", source, "postgres", driver)
}

func cleanup(db *sql.DB) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	res, err := db.ExecContext(ctx, `DELETE FROM email_verifications WHERE expires_at < $1`, time.Now().UTC())
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	fmt.Printf("Deleted %d expired verification codes.\n", n)
	return nil
}
