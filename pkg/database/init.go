package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/Alijeyrad/studio_backend/config"
)

// InitializeDatabases creates the configured application databases if they don't exist.
// It connects to the maintenance 'postgres' database to create the others, so it must run
// before the store is opened.
func InitializeDatabases(ctx context.Context, cfg *config.Config) error {
	names := cfg.Server.Databases
	if len(names) == 0 && cfg.Database.DBName != "" {
		names = []string{cfg.Database.DBName}
	}
	if len(names) == 0 {
		return fmt.Errorf("no database names provided")
	}

	maintenance := FromCentralConfig(cfg.Database)
	maintenance.DBName = "postgres"

	conn, err := openSQLDB(ctx, maintenance)
	if err != nil {
		return fmt.Errorf("failed to connect to postgres database: %w", err)
	}
	defer conn.Close()

	for _, name := range names {
		if err := createDatabaseIfNotExists(ctx, conn, name); err != nil {
			return fmt.Errorf("failed to create database %q: %w", name, err)
		}
	}

	return nil
}

func createDatabaseIfNotExists(ctx context.Context, conn *sql.DB, name string) error {
	var exists bool
	query := `SELECT EXISTS(SELECT 1 FROM pg_database WHERE datname = $1)`
	if err := conn.QueryRowContext(ctx, query, name).Scan(&exists); err != nil {
		return fmt.Errorf("failed to check if database exists: %w", err)
	}
	if exists {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	// CREATE DATABASE does not accept bind parameters
	if _, err := conn.ExecContext(ctx, "CREATE DATABASE "+pq.QuoteIdentifier(name)); err != nil {
		return fmt.Errorf("failed to create database: %w", err)
	}
	return nil
}
