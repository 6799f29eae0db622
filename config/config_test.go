package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfig_Defaults(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")

	cfg, err := NewConfig()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.HTTP.Port)
	assert.Equal(t, "twocare", cfg.Postgres.DBName)
	assert.Equal(t, 15*time.Minute, cfg.JWT.AccessTokenTTL)
	assert.Equal(t, "caregivers", cfg.Typesense.Collection)
	assert.Equal(t, 2, cfg.Mirror.Workers)
	assert.Equal(t, 8, cfg.Mirror.MaxAttempts)
	assert.Empty(t, cfg.Redis.Addr())
}

func TestNewConfig_Env(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("HTTP_PORT", "9000")
	t.Setenv("MIRROR_WORKERS", "5")
	t.Setenv("MIRROR_POLL_INTERVAL", "1s")
	t.Setenv("REDIS_HOST", "cache")

	cfg, err := NewConfig()
	require.NoError(t, err)

	assert.Equal(t, "9000", cfg.HTTP.Port)
	assert.Equal(t, 5, cfg.Mirror.Workers)
	assert.Equal(t, time.Second, cfg.Mirror.PollInterval)
	assert.Equal(t, "cache:6379", cfg.Redis.Addr())
}

func TestNewConfig_InvalidDuration(t *testing.T) {
	t.Setenv("JWT_ACCESS_TOKEN_TTL", "forever")

	_, err := NewConfig()
	assert.Error(t, err)
}

func TestNewConfig_InvalidIntFallsBack(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("POSTGRES_MAX_CONNECTIONS", "many")

	cfg, err := NewConfig()
	require.NoError(t, err)
	assert.Equal(t, 10, cfg.Postgres.MaxConnections)
}

func TestNewConfig_FileOverlay(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := []byte(`
http:
  port: "7070"
typesense:
  url: http://typesense:8108
  api_key: secret
mirror:
  workers: 3
  poll_interval: 250ms
`)
	require.NoError(t, os.WriteFile(path, content, 0o600))
	t.Setenv("CONFIG_FILE", path)
	t.Setenv("POSTGRES_DB", "from_env")

	cfg, err := NewConfig()
	require.NoError(t, err)

	assert.Equal(t, "7070", cfg.HTTP.Port)
	assert.Equal(t, "http://typesense:8108", cfg.Typesense.URL)
	assert.Equal(t, 3, cfg.Mirror.Workers)
	assert.Equal(t, 250*time.Millisecond, cfg.Mirror.PollInterval)
	// значения, отсутствующие в файле, остаются из окружения
	assert.Equal(t, "from_env", cfg.Postgres.DBName)
	assert.Equal(t, "caregivers", cfg.Typesense.Collection)
}

func TestNewConfig_MissingFile(t *testing.T) {
	t.Setenv("CONFIG_FILE", filepath.Join(t.TempDir(), "absent.yaml"))

	_, err := NewConfig()
	assert.Error(t, err)
}
