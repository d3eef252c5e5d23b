package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/taskwell/matrix-api/internal/config"
)

// setupDatabase establishes a connection to the database and configures the
// connection pool. The single *sql.DB is the process-wide shared handle;
// database/sql re-establishes broken connections on demand, so there is no
// separate reconnect path.
func setupDatabase(cfg *config.Config, logger *slog.Logger) (*sql.DB, error) {
	db, err := sql.Open("pgx", cfg.Database.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		// A server that starts while the database is briefly down should
		// still come up; the health endpoint reports the real state and
		// the pool reconnects once the database returns.
		logger.Warn("database not reachable at startup", "error", err)
	} else {
		logger.Info("Database connection established")
	}

	return db, nil
}
