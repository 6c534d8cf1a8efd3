package database

import (
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/cloo-solutions/docqa/internal/logging"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/jackc/pgx/v5/stdlib"
	"go.uber.org/zap"
)

// DefaultMigrationsDir is resolved against the working directory.
const DefaultMigrationsDir = "migrations"

// Migrate applies every pending up migration found in dir.
func Migrate(databaseURL, dir string, logger *zap.Logger) error {
	return withMigrator(databaseURL, dir, func(m *migrate.Migrate) error {
		err := m.Up()
		if err != nil && !errors.Is(err, migrate.ErrNoChange) {
			return fmt.Errorf("failed to apply migrations: %w", err)
		}
		return logVersion(m, logger, errors.Is(err, migrate.ErrNoChange))
	})
}

// Rollback reverts the given number of migrations.
func Rollback(databaseURL, dir string, steps int, logger *zap.Logger) error {
	if steps <= 0 {
		return fmt.Errorf("steps must be greater than zero")
	}
	return withMigrator(databaseURL, dir, func(m *migrate.Migrate) error {
		if err := m.Steps(-steps); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			return fmt.Errorf("failed to roll back migrations: %w", err)
		}
		return logVersion(m, logger, false)
	})
}

func withMigrator(databaseURL, dir string, fn func(*migrate.Migrate) error) error {
	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return fmt.Errorf("failed to open database for migrations: %w", err)
	}
	defer db.Close()

	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("failed to create migration driver: %w", err)
	}

	abs, err := filepath.Abs(dir)
	if err != nil {
		return fmt.Errorf("failed to resolve migrations dir: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance("file://"+filepath.ToSlash(abs), "postgres", driver)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}

	return fn(m)
}

func logVersion(m *migrate.Migrate, logger *zap.Logger, unchanged bool) error {
	logger = logging.OrNop(logger)
	version, dirty, err := m.Version()
	switch {
	case errors.Is(err, migrate.ErrNilVersion):
		logger.Info("migrations: no migrations applied")
		return nil
	case err != nil:
		return fmt.Errorf("failed to get migration version: %w", err)
	case dirty:
		return fmt.Errorf("migration version %d is dirty - manual intervention required", version)
	case unchanged:
		logger.Info("migrations: database is up to date", zap.Uint("version", version))
	default:
		logger.Info("migrations: applied successfully", zap.Uint("version", version))
	}
	return nil
}
