package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, DefaultListenAddr, cfg.Server.ListenAddr)
	assert.Equal(t, BackendMemory, cfg.Storage.Backend)
	assert.Equal(t, DefaultStageTimeout, cfg.Pipeline.StageTimeout)
	assert.Equal(t, "info", cfg.Logging.Level)
	require.NoError(t, cfg.Validate())
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultListenAddr, cfg.Server.ListenAddr)
}

func TestLoad_FromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := `
server:
  listen_addr: ":9090"
logging:
  level: debug
  json: true
storage:
  backend: redis
  redis_addr: "redis.internal:6379"
pipeline:
  stage_timeout: 2s
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":9090", cfg.Server.ListenAddr)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.True(t, cfg.Logging.JSON)
	assert.Equal(t, BackendRedis, cfg.Storage.Backend)
	assert.Equal(t, "redis.internal:6379", cfg.Storage.RedisAddr)
	assert.Equal(t, 2*time.Second, cfg.Pipeline.StageTimeout)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server:\n  listen_addr: \":9090\"\n"), 0o644))

	t.Setenv("TRIAGE_LISTEN_ADDR", ":7070")
	t.Setenv("TRIAGE_LOG_LEVEL", "warn")
	t.Setenv("TRIAGE_STAGE_TIMEOUT", "250ms")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":7070", cfg.Server.ListenAddr)
	assert.Equal(t, "warn", cfg.Logging.Level)
	assert.Equal(t, 250*time.Millisecond, cfg.Pipeline.StageTimeout)
}

func TestValidate_Errors(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Storage.Backend = "cassandra"
	assert.Error(t, cfg.Validate())

	cfg = DefaultConfig()
	cfg.Storage.Backend = BackendPostgres
	assert.Error(t, cfg.Validate(), "postgres backend requires a DSN")

	cfg = DefaultConfig()
	cfg.Storage.Backend = BackendRedis
	cfg.Storage.RedisAddr = ""
	assert.Error(t, cfg.Validate())

	cfg = DefaultConfig()
	cfg.Pipeline.StageTimeout = 0
	assert.Error(t, cfg.Validate())
}
