// File: internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type RuntimeConfig struct {
	Dev bool
}

type ServerConfig struct {
	Port int `yaml:"port"`
}

type LogConfig struct {
	Level    string `yaml:"level"`    // trace|debug|info|warn|error
	Format   string `yaml:"format"`   // json|console
	Sampling bool   `yaml:"sampling"` // enable sampling in prod
}

type AIConfig struct {
	APIKey    string `yaml:"api_key"` // AI21_API_KEY env overrides
	BaseURL   string `yaml:"base_url"`
	Model     string `yaml:"model"`
	MaestroID string `yaml:"maestro_id"`
	WebSearch bool   `yaml:"web_search"`
	// Enrichment run polling policy. Attempts * interval bounds the primary
	// attempt (defaults: 15 * 20s, a five minute ceiling).
	PollInterval time.Duration `yaml:"poll_interval"`
	PollAttempts int           `yaml:"poll_attempts"`
}

type JobsConfig struct {
	Workers         int           `yaml:"workers"`
	MaxAge          time.Duration `yaml:"max_age"`          // jobs older than this are swept
	CleanupInterval time.Duration `yaml:"cleanup_interval"` // sweep period
}

type RedisConfig struct {
	URL      string        `yaml:"url"` // empty -> in-memory job store
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	TTL      time.Duration `yaml:"ttl"`
}

type Config struct {
	Server ServerConfig `yaml:"server"`
	Log    LogConfig    `yaml:"log"`
	AI     AIConfig     `yaml:"ai"`
	Jobs   JobsConfig   `yaml:"jobs"`
	Redis  RedisConfig  `yaml:"redis"`

	Runtime RuntimeConfig `yaml:"-"`
}

func LoadConfig(configPath string, dev bool) (*Config, error) {
	// .env is a dev convenience; absence is not an error.
	_ = godotenv.Load()

	// A missing config file is fine: defaults plus environment cover a
	// zero-config boot.
	var cfg Config
	b, err := os.ReadFile(configPath)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	case os.IsNotExist(err):
	default:
		return nil, fmt.Errorf("read config: %w", err)
	}

	// defaults
	if cfg.Server.Port <= 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "json"
	}
	if cfg.AI.BaseURL == "" {
		cfg.AI.BaseURL = "https://api.ai21.com/studio/v1"
	}
	if cfg.AI.Model == "" {
		cfg.AI.Model = "jamba-large"
	}
	if cfg.AI.MaestroID == "" {
		cfg.AI.MaestroID = "travel-planner"
	}
	if cfg.AI.PollInterval <= 0 {
		cfg.AI.PollInterval = 20 * time.Second
	}
	if cfg.AI.PollAttempts <= 0 {
		cfg.AI.PollAttempts = 15
	}
	if cfg.Jobs.Workers <= 0 {
		cfg.Jobs.Workers = 8
	}
	if cfg.Jobs.MaxAge <= 0 {
		cfg.Jobs.MaxAge = 24 * time.Hour
	}
	if cfg.Jobs.CleanupInterval <= 0 {
		cfg.Jobs.CleanupInterval = time.Hour
	}
	if cfg.Redis.TTL <= 0 {
		cfg.Redis.TTL = 24 * time.Hour
	}

	// The credential comes from the environment when present; the config
	// value is a fallback for local setups.
	if key := os.Getenv("AI21_API_KEY"); key != "" {
		cfg.AI.APIKey = key
	}

	// Minimal validation. The API key is deliberately NOT required here: its
	// absence is surfaced per-request as a distinct misconfiguration error so
	// the server still boots for health checks and dev mode.
	if cfg.Server.Port > 65535 {
		return nil, errors.New("server.port out of range")
	}

	cfg.Runtime.Dev = dev
	return &cfg, nil
}
