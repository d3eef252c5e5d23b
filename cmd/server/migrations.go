package main

import (
	"fmt"
	"log/slog"

	"github.com/pressly/goose/v3"

	"github.com/taskwell/matrix-api/internal/config"
)

// runMigrationCommand opens a database connection and executes the requested
// goose command against the migrations directory.
func runMigrationCommand(cfg *config.Config, command, dir string) error {
	db, err := setupDatabase(cfg, slog.Default())
	if err != nil {
		return err
	}
	defer func() {
		if err := db.Close(); err != nil {
			slog.Error("failed to close database after migration", "error", err)
		}
	}()

	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("failed to set migration dialect: %w", err)
	}

	slog.Info("Executing migration command", "command", command, "dir", dir)

	switch command {
	case "up":
		return goose.Up(db, dir)
	case "down":
		return goose.Down(db, dir)
	case "status":
		return goose.Status(db, dir)
	case "version":
		version, err := goose.GetDBVersion(db)
		if err != nil {
			return err
		}
		slog.Info("Current migration version", "version", version)
		return nil
	default:
		return fmt.Errorf("unknown migration command %q", command)
	}
}
