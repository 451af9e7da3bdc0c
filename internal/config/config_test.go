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
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_MissingFileYieldsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)

	assert.Equal(t, Default(), cfg)
	assert.Equal(t, 3, cfg.Sync.MaxAttempts)
	assert.Equal(t, 10*time.Second, cfg.Sync.AttemptTimeout.Std())
	assert.Equal(t, 30*time.Second, cfg.Sync.ProbeInterval.Std())
}

func TestLoad_OverlaysFileOnDefaults(t *testing.T) {
	path := writeConfig(t, `
service_url: https://records.example.com
sync:
  max_attempts: 5
  attempt_timeout: 4s
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "https://records.example.com", cfg.ServiceURL)
	assert.Equal(t, 5, cfg.Sync.MaxAttempts)
	assert.Equal(t, 4*time.Second, cfg.Sync.AttemptTimeout.Std())
	assert.Equal(t, 30*time.Second, cfg.Sync.ProbeInterval.Std(), "unset fields keep defaults")
	assert.NotEmpty(t, cfg.Database, "default database path applies")
}

func TestLoad_RejectsBrokenYAML(t *testing.T) {
	path := writeConfig(t, "service_url: [unclosed")

	_, err := Load(path)
	assert.Error(t, err, "a broken config is fixable by the user and must not be ignored")
}

func TestLoad_RejectsBadDuration(t *testing.T) {
	path := writeConfig(t, `
sync:
  attempt_timeout: soonish
`)

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "soonish")
}

func TestConfigValidate(t *testing.T) {
	cfg := Default()
	assert.Error(t, cfg.Validate(), "service_url is required")

	cfg.ServiceURL = "https://records.example.com"
	assert.NoError(t, cfg.Validate())

	cfg.Sync.MaxAttempts = 0
	assert.Error(t, cfg.Validate())
}
