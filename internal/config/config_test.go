package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadYAMLWithEnvOverride(t *testing.T) {
	path := writeConfig(t, `
server:
  port: 5000
  env: production
database:
  url: postgres://yaml
jwt:
  secret: from-yaml
cron:
  secret: cron-yaml
`)
	t.Setenv("JWT_SECRET", "from-env")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 5000, cfg.Server.Port)
	assert.Equal(t, "postgres://yaml", cfg.Database.DSN)
	assert.Equal(t, "from-env", cfg.JWT.Secret)
	assert.Equal(t, "cron-yaml", cfg.Cron.Secret)
	assert.Equal(t, "local", cfg.Storage.Type, "defaults survive partial YAML")
}

func TestLoadEnvOnlyWhenFileMissing(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://env")
	t.Setenv("SERVER_ENV", "test")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "postgres://env", cfg.Database.DSN)
	assert.True(t, cfg.IsDevelopment())
}

func TestValidateRequiresSecretOutsideDevelopment(t *testing.T) {
	cfg := Default()
	cfg.Database.DSN = "postgres://x"
	cfg.Server.Env = "production"
	assert.Error(t, cfg.Validate())

	cfg.JWT.Secret = "s"
	assert.NoError(t, cfg.Validate())

	cfg.Server.Port = 70000
	assert.Error(t, cfg.Validate())
}

func TestAllowedOrigins(t *testing.T) {
	cfg := Default()
	cfg.Server.CORSOrigins = " https://a.example , ,https://b.example"
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.AllowedOrigins())
}
