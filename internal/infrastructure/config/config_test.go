package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
}

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "procurement-backend", cfg.App.Name)
	assert.Equal(t, "development", cfg.App.Environment)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "procurement", cfg.Database.Name)
	assert.Equal(t, "disable", cfg.Database.SSLMode)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.False(t, cfg.Telemetry.Enabled)
	assert.False(t, cfg.Seed.Demo)
	assert.Equal(t, 500*time.Millisecond, cfg.Service.SlowCallThreshold)
	assert.True(t, cfg.IsDevelopment())
	assert.False(t, cfg.IsProduction())
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("SKC_SERVER_PORT", "9090")
	t.Setenv("SKC_DATABASE_PASSWORD", "secret")
	t.Setenv("SKC_LOG_LEVEL", "debug")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "secret", cfg.Database.Password)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoad_ConfigFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir+"/config.toml", `
[app]
environment = "staging"

[server]
port = 8888

[seed]
demo = true

[[auth.users]]
username = "admin"
password = "admin"
role = "ADMIN"

[[auth.users]]
username = "user"
password = "user"
role = "USER"
`)
	t.Chdir(dir)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "staging", cfg.App.Environment)
	assert.Equal(t, 8888, cfg.Server.Port)
	assert.True(t, cfg.Seed.Demo)
	require.Len(t, cfg.Auth.Users, 2)
	assert.Equal(t, "admin", cfg.Auth.Users[0].Username)
	assert.Equal(t, "ADMIN", cfg.Auth.Users[0].Role)
}

func TestLoad_ProductionGuards(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir+"/config.toml", `
[app]
environment = "production"
`)
	t.Chdir(dir)

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "password")
}

func TestDatabaseConfig_DSN(t *testing.T) {
	cfg := DatabaseConfig{
		Host:     "db.internal",
		Port:     5433,
		User:     "svc",
		Password: "p@ss word",
		Name:     "procurement",
		SSLMode:  "require",
	}

	dsn := cfg.DSN()
	assert.Contains(t, dsn, "postgres://")
	assert.Contains(t, dsn, "db.internal:5433")
	assert.Contains(t, dsn, "/procurement")
	assert.Contains(t, dsn, "sslmode=require")
	// Credentials must be URL-escaped.
	assert.NotContains(t, dsn, "p@ss word")
}
