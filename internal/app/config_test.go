package app

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	require.Equal(t, 8000, cfg.Server.Port)
	require.Equal(t, "info", cfg.Server.LogLevel)
	require.Equal(t, "sqlite", cfg.Database.Driver)
	require.Equal(t, 15*time.Minute, cfg.Auth.JWT.TTL)
	require.Equal(t, 720*time.Hour, cfg.Auth.JWT.RefreshTTL)
	require.True(t, cfg.Monitoring.Prometheus.Enabled)
	require.Equal(t, "@hourly", cfg.Maintenance.CompleteEventsCron)
}

func TestLoadConfigReadsFile(t *testing.T) {
	dir := t.TempDir()
	contents := []byte(`
server:
  port: 9001
  log_level: debug
database:
  driver: postgres
  user: meetgrid
  name: meetgrid
auth:
  jwt:
    secret: test-secret
    access_token_ttl: 30m
`)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), contents, 0o600))

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)

	require.Equal(t, 9001, cfg.Server.Port)
	require.Equal(t, "debug", cfg.Server.LogLevel)
	require.Equal(t, "postgres", cfg.Database.Driver)
	require.Equal(t, 30*time.Minute, cfg.Auth.JWT.TTL)
	require.NoError(t, cfg.Validate())
}

func TestValidateRequiresSecret(t *testing.T) {
	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	require.Error(t, cfg.Validate())

	cfg.Auth.JWT.Secret = "super-secret"
	require.NoError(t, cfg.Validate())
}
