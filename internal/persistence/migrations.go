package persistence

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"go.uber.org/zap"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// RunMigrations applies the embedded SQL migrations to the database behind dsn.
func RunMigrations(dsn string, logger *zap.Logger) error {
	if dsn == "" {
		logger.Warn("no postgres DSN available; skipping migrations")
		return nil
	}

	migrateURL, err := MigrateURL(dsn)
	if err != nil {
		return err
	}

	source, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("open migrations: %w", err)
	}

	m, err := migrate.NewWithSourceInstance("iofs", source, migrateURL)
	if err != nil {
		return fmt.Errorf("init migrations: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("apply migrations: %w", err)
	}

	version, dirty, _ := m.Version()
	logger.Info("migrations applied", zap.Uint("version", version), zap.Bool("dirty", dirty))
	return nil
}

// LatestMigration is the highest version among the embedded migrations, the version a
// fully migrated database reports.
func LatestMigration() (uint, error) {
	source, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return 0, fmt.Errorf("open migrations: %w", err)
	}
	defer source.Close()

	version, err := source.First()
	if err != nil {
		return 0, fmt.Errorf("first migration: %w", err)
	}
	for {
		next, err := source.Next(version)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return version, nil
			}
			return 0, fmt.Errorf("next migration after %d: %w", version, err)
		}
		version = next
	}
}

// MigrateURL rewrites a postgres:// DSN into the pgx5:// form the migrate driver expects.
func MigrateURL(dsn string) (string, error) {
	for _, scheme := range []string{"postgres://", "postgresql://", "pgx5://"} {
		if strings.HasPrefix(dsn, scheme) {
			return "pgx5://" + strings.TrimPrefix(dsn, scheme), nil
		}
	}
	return "", fmt.Errorf("migrations need a URL-style POSTGRES_DSN, got %q", redactDSN(dsn))
}

func redactDSN(dsn string) string {
	if idx := strings.Index(dsn, "password="); idx >= 0 {
		return dsn[:idx] + "password=***"
	}
	return dsn
}
