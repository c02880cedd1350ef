package database

import (
	"embed"
	"errors"
	"fmt"

	migrate "github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"gorm.io/gorm"

	"studiofinder_backend/internal/config"
	"studiofinder_backend/internal/logger"
	"studiofinder_backend/internal/models"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

// Migrate применяет схему: SQL-миграции (только postgres) либо AutoMigrate.
func Migrate(db *gorm.DB, cfg config.DatabaseConfig) error {
	if cfg.SQLMigrations {
		if driverName(cfg) != DriverPostgres {
			return fmt.Errorf("sql migrations require postgres, got %q", driverName(cfg))
		}
		return RunSQLMigrations(cfg.DSN)
	}
	return AutoMigrate(db)
}

// AutoMigrate выполняет миграцию всех моделей
func AutoMigrate(db *gorm.DB) error {
	for _, m := range models.All() {
		if err := db.AutoMigrate(m); err != nil {
			return fmt.Errorf("automigrate %T: %w", m, err)
		}
	}
	logger.Info("AutoMigrate completed", "models", len(models.All()))
	return nil
}

// RunSQLMigrations applies the embedded migrations/*.sql with golang-migrate.
// dsn must be in URL form (postgres://...).
func RunSQLMigrations(dsn string) error {
	source, err := iofs.New(migrationFiles, "migrations")
	if err != nil {
		return fmt.Errorf("open embedded migrations: %w", err)
	}
	m, err := migrate.NewWithSourceInstance("iofs", source, dsn)
	if err != nil {
		return fmt.Errorf("init migrate: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("apply migrations: %w", err)
	}
	version, dirty, _ := m.Version()
	logger.Info("SQL migrations applied", "version", version, "dirty", dirty)
	return nil
}
