// Package main provides a CLI tool for running the client state migrations.
package main

import (
	"flag"
	"fmt"
	"log"

	"github.com/zhuiying-client/internal/config"
	"github.com/zhuiying-client/internal/storage"
)

func main() {
	var (
		action = flag.String("action", "up", "Migration action: up, down, version")
		path   = flag.String("path", "", "Migrations directory (overrides POSTGRES_MIGRATIONS_PATH)")
	)
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	pg := cfg.Storage.Postgres
	if *path != "" {
		pg.MigrationsPath = *path
	}

	if err := runMigrations(&pg, *action); err != nil {
		log.Fatalf("Postgres migration failed: %v", err)
	}
}

func runMigrations(cfg *config.PostgresConfig, action string) error {
	switch action {
	case "up":
		log.Println("Running Postgres migrations...")
		if err := storage.RunMigrations(cfg); err != nil {
			return err
		}
		log.Println("Postgres migrations completed successfully")

	case "down":
		log.Println("Rolling back Postgres migration...")
		if err := storage.RollbackMigrations(cfg); err != nil {
			return err
		}
		log.Println("Postgres migration rolled back successfully")

	case "version":
		version, dirty, err := storage.MigrationVersion(cfg)
		if err != nil {
			return err
		}
		log.Printf("Current Postgres migration version: %d (dirty: %v)", version, dirty)

	default:
		return fmt.Errorf("unknown action: %s", action)
	}

	return nil
}
