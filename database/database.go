package database

import (
	"fmt"
	"strings"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"studiofinder_backend/internal/config"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Connect открывает GORM по настройкам database.*; все метки времени пишутся в UTC.
func Connect(cfg config.DatabaseConfig, debug bool) (*gorm.DB, error) {
	if cfg.DSN == "" {
		return nil, fmt.Errorf("database url is empty")
	}

	logLevel := gormlogger.Silent
	if debug {
		logLevel = gormlogger.Warn
	}
	gormCfg := &gorm.Config{
		Logger:  gormlogger.Default.LogMode(logLevel),
		NowFunc: func() time.Time { return time.Now().UTC() },
	}

	var dialector gorm.Dialector
	switch driverName(cfg) {
	case DriverSQLite:
		dialector = sqlite.Open(cfg.DSN)
	case DriverPostgres:
		dialector = postgres.Open(cfg.DSN)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}

	db, err := gorm.Open(dialector, gormCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to GORM: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get *sql.DB from GORM: %w", err)
	}
	if driverName(cfg) == DriverPostgres {
		sqlDB.SetMaxOpenConns(25)
		sqlDB.SetMaxIdleConns(5)
		sqlDB.SetConnMaxLifetime(30 * time.Minute)
	}
	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("database unavailable: %w", err)
	}
	return db, nil
}

func driverName(cfg config.DatabaseConfig) string {
	if cfg.Driver != "" {
		return strings.ToLower(cfg.Driver)
	}
	if strings.HasPrefix(cfg.DSN, "file:") || strings.HasSuffix(cfg.DSN, ".db") {
		return DriverSQLite
	}
	return DriverPostgres
}
