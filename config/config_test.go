package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "empty.yaml"))
	require.Error(t, err, "explicit config path must exist")

	cfg, err = Load("")
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8080/api/v1", cfg.API.BaseURL)
	assert.Equal(t, 30*time.Second, cfg.API.Timeout)
	assert.False(t, cfg.API.Debug)
	assert.Equal(t, "pc", cfg.Session.Variant)
	assert.Equal(t, time.Minute, cfg.Session.HeartbeatInterval)
	assert.NotEmpty(t, cfg.Session.StoragePath)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "maintops.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
api:
  base_url: https://maint.example.com/api/v1
  timeout: 10s
  debug: true
session:
  variant: h5
  storage_path: ""
  heartbeat_interval: 30s
`), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "https://maint.example.com/api/v1", cfg.API.BaseURL)
	assert.Equal(t, 10*time.Second, cfg.API.Timeout)
	assert.True(t, cfg.API.Debug)
	assert.Equal(t, "h5", cfg.Session.Variant)
	assert.Empty(t, cfg.Session.StoragePath)
	assert.Equal(t, 30*time.Second, cfg.Session.HeartbeatInterval)
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("MAINTOPS_API_BASE_URL", "https://env.example.com/api/v1")
	t.Setenv("MAINTOPS_SESSION_VARIANT", "h5")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "https://env.example.com/api/v1", cfg.API.BaseURL)
	assert.Equal(t, "h5", cfg.Session.Variant)
}
