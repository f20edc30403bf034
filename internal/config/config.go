// Package config loads edge-core's runtime configuration the way the
// rest of the stack does: YAML file defaults, then environment overrides
// decoded with envdecode, with an optional .env file loaded first.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joeshaw/envdecode"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// ServerConfig controls the HTTP adapter.
type ServerConfig struct {
	Host string `yaml:"host" env:"SERVER_HOST"`
	Port int    `yaml:"port" env:"SERVER_PORT"`
}

// LoggingConfig controls application logging.
type LoggingConfig struct {
	Level      string `yaml:"level" env:"LOG_LEVEL"`
	Format     string `yaml:"format" env:"LOG_FORMAT"`
	Output     string `yaml:"output" env:"LOG_OUTPUT"`
	FilePrefix string `yaml:"file_prefix" env:"LOG_FILE_PREFIX"`
}

// SnapshotConfig controls the Vault's periodic snapshot persistence.
type SnapshotConfig struct {
	Enabled  bool   `yaml:"enabled" env:"SNAPSHOT_ENABLED"`
	Key      string `yaml:"key" env:"SNAPSHOT_KEY"`
	Schedule string `yaml:"schedule" env:"SNAPSHOT_CRON_SCHEDULE"`
	RedisURL string `yaml:"redis_url" env:"SNAPSHOT_REDIS_URL"`
}

// Config is the top-level configuration structure.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Logging  LoggingConfig  `yaml:"logging"`
	Snapshot SnapshotConfig `yaml:"snapshot"`
}

// New returns a configuration populated with defaults.
func New() *Config {
	return &Config{
		Server: ServerConfig{Host: "0.0.0.0", Port: 8951},
		Logging: LoggingConfig{
			Level:      "info",
			Format:     "text",
			Output:     "stdout",
			FilePrefix: "flecs-core",
		},
		Snapshot: SnapshotConfig{
			Enabled:  false,
			Key:      "flecs-core:vault-snapshot",
			Schedule: "@every 5m",
			RedisURL: "redis://localhost:6379/0",
		},
	}
}

// Load loads configuration from file (if present) and environment
// variables, environment taking precedence.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := New()

	path := strings.TrimSpace(os.Getenv("CONFIG_FILE"))
	if path == "" {
		path = "configs/config.yaml"
	}
	if err := loadFromFile(path, cfg); err != nil {
		return nil, err
	}

	if err := envdecode.Decode(cfg); err != nil {
		// envdecode errors when none of the tagged fields are present in
		// the environment; treat that as "no overrides" for local runs.
		if !strings.Contains(err.Error(), "none of the target fields were set") {
			return nil, fmt.Errorf("decode env: %w", err)
		}
	}

	return cfg, nil
}

func loadFromFile(path string, cfg *Config) error {
	expanded, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	data, err := os.ReadFile(expanded)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	return yaml.Unmarshal(data, cfg)
}
