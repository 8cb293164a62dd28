package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chdir(t *testing.T, dir string) {
	t.Helper()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
}

func TestLoadConfigDefaultsAndEnv(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("TELEHEALTH_JWT_SECRET", "s3cret")
	t.Setenv("TELEHEALTH_DATABASE_HOST", "db.internal")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "s3cret", cfg.JWT.Secret)
	assert.Equal(t, "db.internal", cfg.Database.Host)
	assert.Equal(t, 5000, cfg.Server.Port)
	assert.Equal(t, 7*24*time.Hour, cfg.JWT.Expiry)
	assert.Equal(t, 15*time.Minute, cfg.Video.JoinWindow)
	assert.Equal(t, time.Hour, cfg.Video.TokenTTL)
}

func TestLoadConfigFromFile(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "config"), 0o755))
	yaml := []byte(`
server:
  port: 8081
jwt:
  secret: from-file
  expiry: 12h
video:
  app_id: demo
  timezone: UTC
`)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config", "config.yaml"), yaml, 0o600))

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, 8081, cfg.Server.Port)
	assert.Equal(t, "from-file", cfg.JWT.Secret)
	assert.Equal(t, 12*time.Hour, cfg.JWT.Expiry)
	assert.Equal(t, "demo", cfg.Video.AppID)
}

func TestLoadConfigRequiresSecret(t *testing.T) {
	chdir(t, t.TempDir())

	_, err := LoadConfig()
	assert.EqualError(t, err, "jwt.secret is required")
}
