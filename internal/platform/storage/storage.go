// Package storage opens the repository backend named by DB_DRIVER.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	portsrepo "github.com/SscSPs/licoreria_pos/internal/core/ports/repositories"
	"github.com/SscSPs/licoreria_pos/internal/platform/config"
	"github.com/SscSPs/licoreria_pos/internal/repositories/database/pgsql"
	"github.com/SscSPs/licoreria_pos/internal/repositories/database/sqlite"
	"github.com/SscSPs/licoreria_pos/internal/repositories/memory"
	"github.com/SscSPs/licoreria_pos/pkg/database"

	migrate "github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/jackc/pgx/v5/stdlib"
)

// Open returns the repositories for cfg.DBDriver. Postgres migrations are
// applied before the pool is handed out; SQLite carries its own schema.
func Open(ctx context.Context, cfg *config.Config, logger *slog.Logger) (portsrepo.RepositoryProvider, error) {
	switch cfg.DBDriver {
	case config.DriverPostgres:
		if err := RunMigrations(cfg.DatabaseURL, cfg.MigrationsPath, logger); err != nil {
			return portsrepo.RepositoryProvider{}, err
		}
		dbPool, err := database.NewPgxPool(ctx, cfg.DatabaseURL, cfg.EnableDBCheck)
		if err != nil {
			return portsrepo.RepositoryProvider{}, fmt.Errorf("failed to initialize database pool: %w", err)
		}
		logger.Info("Database connection pool established.")
		return pgsql.NewRepositoryProvider(dbPool), nil

	case config.DriverSQLite:
		store, err := sqlite.New(ctx, cfg.SQLitePath)
		if err != nil {
			return portsrepo.RepositoryProvider{}, fmt.Errorf("failed to open sqlite store: %w", err)
		}
		logger.Info("SQLite store opened.", slog.String("path", cfg.SQLitePath))
		return sqlite.NewRepositoryProvider(store), nil

	case config.DriverMemory:
		logger.Warn("Using the in-memory store; nothing survives a restart.")
		return memory.NewStore().RepositoryProvider(), nil
	}
	return portsrepo.RepositoryProvider{}, fmt.Errorf("unsupported DB_DRIVER %q", cfg.DBDriver)
}

// RunMigrations applies every pending "up" migration under migrationsPath.
func RunMigrations(databaseURL, migrationsPath string, logger *slog.Logger) error {
	logger.Info("Running database migrations...")
	// pgx stdlib keeps migrations on the same driver as the pool
	migrationDB, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return fmt.Errorf("failed to open database connection for migrations: %w", err)
	}
	defer func() {
		if cerr := migrationDB.Close(); cerr != nil {
			logger.Error("Error closing migration DB connection", slog.String("error", cerr.Error()))
		}
	}()
	if err := migrationDB.Ping(); err != nil {
		return fmt.Errorf("failed to ping database for migrations: %w", err)
	}

	driver, err := postgres.WithInstance(migrationDB, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("could not create postgres driver instance for migrations: %w", err)
	}
	m, err := migrate.NewWithDatabaseInstance(migrationsPath, "postgres", driver)
	if err != nil {
		return fmt.Errorf("could not create migrate instance: %w", err)
	}

	upErr := m.Up()
	if upErr != nil && !errors.Is(upErr, migrate.ErrNoChange) {
		return fmt.Errorf("failed to apply migrations: %w", upErr)
	}
	// m.Close also closes migrationDB; the deferred Close then returns an already-closed error we ignore.
	sourceErr, dbErr := m.Close()
	if sourceErr != nil {
		return fmt.Errorf("migration source error: %w", sourceErr)
	}
	if dbErr != nil {
		return fmt.Errorf("migration database error: %w", dbErr)
	}

	if errors.Is(upErr, migrate.ErrNoChange) {
		logger.Info("No new migrations to apply.")
	} else {
		logger.Info("Database migrations applied successfully.")
	}
	return nil
}
