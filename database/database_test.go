package database

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"studiofinder_backend/internal/auth"
	"studiofinder_backend/internal/config"
	"studiofinder_backend/internal/models"
)

func memoryConfig() config.DatabaseConfig {
	return config.DatabaseConfig{
		DSN:    fmt.Sprintf("file:db_%s?mode=memory&cache=shared", uuid.NewString()[:8]),
		Driver: DriverSQLite,
	}
}

func TestDriverName(t *testing.T) {
	tests := []struct {
		cfg  config.DatabaseConfig
		want string
	}{
		{config.DatabaseConfig{DSN: "postgres://u:p@localhost/db"}, DriverPostgres},
		{config.DatabaseConfig{DSN: "file:test?mode=memory"}, DriverSQLite},
		{config.DatabaseConfig{DSN: "studio.db"}, DriverSQLite},
		{config.DatabaseConfig{DSN: "anything", Driver: "SQLite"}, DriverSQLite},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, driverName(tt.cfg), tt.cfg.DSN)
	}
}

func TestConnectRejectsUnknownDriver(t *testing.T) {
	_, err := Connect(config.DatabaseConfig{DSN: "x", Driver: "oracle"}, false)
	require.Error(t, err)

	_, err = Connect(config.DatabaseConfig{}, false)
	require.Error(t, err)
}

func TestMigrateSQLiteRequiresAutoMigrate(t *testing.T) {
	cfg := memoryConfig()
	db, err := Connect(cfg, false)
	require.NoError(t, err)

	cfg.SQLMigrations = true
	require.Error(t, Migrate(db, cfg))

	cfg.SQLMigrations = false
	require.NoError(t, Migrate(db, cfg))
	for _, table := range []string{"users", "studio_profiles", "payments", "email_deliveries"} {
		assert.True(t, db.Migrator().HasTable(table), table)
	}
}

func TestSeedFirstAdmin(t *testing.T) {
	cfg := memoryConfig()
	db, err := Connect(cfg, false)
	require.NoError(t, err)
	require.NoError(t, AutoMigrate(db))

	created, err := SeedFirstAdmin(db, "", "")
	require.NoError(t, err)
	assert.False(t, created)

	_, err = SeedFirstAdmin(db, "root@example.com", "short")
	require.Error(t, err)

	created, err = SeedFirstAdmin(db, " Root@Example.com ", "supersecret")
	require.NoError(t, err)
	assert.True(t, created)

	var admin models.User
	require.NoError(t, db.Where("email = ?", "root@example.com").First(&admin).Error)
	assert.Equal(t, models.UserRoleAdmin, admin.Role)
	assert.Equal(t, models.UserStatusActive, admin.Status)
	assert.True(t, admin.EmailVerified)
	assert.True(t, auth.CheckPasswordHash("supersecret", admin.PasswordHash))

	created, err = SeedFirstAdmin(db, "root@example.com", "supersecret")
	require.NoError(t, err)
	assert.False(t, created)
}
