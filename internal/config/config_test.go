package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "dev", cfg.Env)
	assert.Equal(t, DriverMemory, cfg.Storage.Driver)
	assert.Equal(t, ":memory:", cfg.Storage.Path)
	assert.Equal(t, ":8080", cfg.HTTPServer.Addr)
	assert.Equal(t, 10*time.Second, cfg.HTTPServer.ReadTimeout)
	assert.Equal(t, 5*time.Second, cfg.HTTPServer.ShutdownTimeout)
	assert.False(t, cfg.RateLimit.Enabled)
}

func TestLoad_WithConfigFile(t *testing.T) {
	path := writeConfig(t, `
env: prod
storage:
  driver: sqlite
  path: /tmp/books.db
http_server:
  address: ":9000"
  write_timeout: 3s
rate_limit:
  enabled: true
  rps: 2
  burst: 4
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "prod", cfg.Env)
	assert.Equal(t, DriverSQLite, cfg.Storage.Driver)
	assert.Equal(t, "/tmp/books.db", cfg.Storage.Path)
	assert.Equal(t, ":9000", cfg.HTTPServer.Addr)
	assert.Equal(t, 3*time.Second, cfg.HTTPServer.WriteTimeout)
	assert.Equal(t, 10*time.Second, cfg.HTTPServer.ReadTimeout)
	assert.True(t, cfg.RateLimit.Enabled)
	assert.Equal(t, 2.0, cfg.RateLimit.RPS)
	assert.Equal(t, 4, cfg.RateLimit.Burst)
}

func TestLoad_EnvVarOverridesConfigFile(t *testing.T) {
	path := writeConfig(t, `
http_server:
  address: ":9000"
`)
	t.Setenv("HTTP_SERVER_ADDR", ":9090")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":9090", cfg.HTTPServer.Addr)
}

func TestLoad_MissingFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Nil(t, cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing.yaml")
}

func TestLoad_UnknownDriver(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "postgres")

	cfg, err := Load("")
	assert.Nil(t, cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown storage driver "postgres"`)
}

func TestLoad_InvalidRateLimit(t *testing.T) {
	t.Setenv("RATE_LIMIT_ENABLED", "true")
	t.Setenv("RATE_LIMIT_BURST", "0")

	_, err := Load("")
	require.Error(t, err)
}
