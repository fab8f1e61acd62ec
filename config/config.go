// Package config provides configuration management for the feedback
// triage service. It supports loading configuration from YAML files and
// environment variables, in that order of precedence (env wins).
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// StorageBackend selects the session store and memory log implementation.
type StorageBackend string

const (
	// BackendMemory keeps all state in-process (the default).
	BackendMemory StorageBackend = "memory"
	// BackendRedis keeps sessions and the memory log in Redis.
	BackendRedis StorageBackend = "redis"
	// BackendPostgres keeps sessions and the memory log in Postgres.
	BackendPostgres StorageBackend = "postgres"
)

// Default configuration values.
const (
	DefaultListenAddr      = ":8080"
	DefaultShutdownTimeout = 15 * time.Second
	DefaultStageTimeout    = 5 * time.Second
	DefaultRedisAddr       = "localhost:6379"
)

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	// ListenAddr is the host:port the HTTP server binds to.
	ListenAddr string `yaml:"listen_addr"`

	// ShutdownTimeout bounds graceful shutdown on SIGINT/SIGTERM.
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// LoggingConfig holds logger settings.
type LoggingConfig struct {
	// Level is the minimum log level (debug, info, warn, error).
	Level string `yaml:"level"`

	// Environment is included in all log entries.
	Environment string `yaml:"environment"`

	// JSON enables JSON output (human-readable console when false).
	JSON bool `yaml:"json"`
}

// StorageConfig selects and parameterizes the storage backend.
type StorageConfig struct {
	// Backend is one of memory, redis, postgres.
	Backend StorageBackend `yaml:"backend"`

	// RedisAddr is the host:port of the Redis server (redis backend).
	RedisAddr string `yaml:"redis_addr"`

	// PostgresDSN is the pgx connection string (postgres backend).
	PostgresDSN string `yaml:"postgres_dsn"`
}

// PipelineConfig holds coordinator settings.
type PipelineConfig struct {
	// StageTimeout bounds each analysis stage invocation.
	StageTimeout time.Duration `yaml:"stage_timeout"`
}

// Config is the root service configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Logging  LoggingConfig  `yaml:"logging"`
	Storage  StorageConfig  `yaml:"storage"`
	Pipeline PipelineConfig `yaml:"pipeline"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			ListenAddr:      DefaultListenAddr,
			ShutdownTimeout: DefaultShutdownTimeout,
		},
		Logging: LoggingConfig{
			Level:       "info",
			Environment: "development",
			JSON:        false,
		},
		Storage: StorageConfig{
			Backend:   BackendMemory,
			RedisAddr: DefaultRedisAddr,
		},
		Pipeline: PipelineConfig{
			StageTimeout: DefaultStageTimeout,
		},
	}
}

// Load builds the configuration from defaults, the optional YAML file at
// path (skipped when path is empty or missing), and environment variable
// overlays.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if err := loadFromFile(cfg, path); err != nil {
				return nil, fmt.Errorf("loading config file: %w", err)
			}
		}
	}

	loadFromEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

func loadFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}
	return nil
}

func loadFromEnv(cfg *Config) {
	if v := os.Getenv("TRIAGE_LISTEN_ADDR"); v != "" {
		cfg.Server.ListenAddr = v
	}
	if v := os.Getenv("TRIAGE_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("TRIAGE_LOG_JSON"); v == "true" || v == "1" {
		cfg.Logging.JSON = true
	}
	if v := os.Getenv("TRIAGE_ENVIRONMENT"); v != "" {
		cfg.Logging.Environment = v
	}
	if v := os.Getenv("TRIAGE_STORAGE_BACKEND"); v != "" {
		cfg.Storage.Backend = StorageBackend(v)
	}
	if v := os.Getenv("TRIAGE_REDIS_ADDR"); v != "" {
		cfg.Storage.RedisAddr = v
	}
	if v := os.Getenv("TRIAGE_POSTGRES_DSN"); v != "" {
		cfg.Storage.PostgresDSN = v
	}
	if v := os.Getenv("TRIAGE_STAGE_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Pipeline.StageTimeout = d
		}
	}
}

// Validate checks the configuration for consistency.
func (c *Config) Validate() error {
	switch c.Storage.Backend {
	case BackendMemory, BackendRedis, BackendPostgres:
	default:
		return fmt.Errorf("unknown storage backend %q", c.Storage.Backend)
	}
	if c.Storage.Backend == BackendRedis && c.Storage.RedisAddr == "" {
		return fmt.Errorf("redis backend requires redis_addr")
	}
	if c.Storage.Backend == BackendPostgres && c.Storage.PostgresDSN == "" {
		return fmt.Errorf("postgres backend requires postgres_dsn")
	}
	if c.Pipeline.StageTimeout <= 0 {
		return fmt.Errorf("stage_timeout must be positive")
	}
	return nil
}
