package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Hermes   HermesConfig   `yaml:"hermes"`
	Sessions SessionsConfig `yaml:"sessions"`
	Scoring  ScoringConfig  `yaml:"scoring"`
	Logging  LoggingConfig  `yaml:"logging"`
}

type ServerConfig struct {
	Port        int    `yaml:"port"`
	MetricsPort int    `yaml:"metrics_port"`
	AdminToken  string `yaml:"admin_token"`
	RateLimit   int    `yaml:"rate_limit"`
}

// DatabaseConfig selects snapshot storage. An empty URL keeps sessions in memory.
type DatabaseConfig struct {
	URL string `yaml:"url"`
}

// HermesConfig points at the NATS server for change events. Empty disables events.
type HermesConfig struct {
	URL string `yaml:"url"`
}

type SessionsConfig struct {
	IdleTimeoutMs   int `yaml:"idle_timeout_ms"`
	SweepIntervalMs int `yaml:"sweep_interval_ms"`
	MaxSessions     int `yaml:"max_sessions"`
}

type ScoringConfig struct {
	ExcludeUnrated bool `yaml:"exclude_unrated"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

func (c *Config) IdleTimeout() time.Duration {
	return time.Duration(c.Sessions.IdleTimeoutMs) * time.Millisecond
}

func (c *Config) SweepInterval() time.Duration {
	return time.Duration(c.Sessions.SweepIntervalMs) * time.Millisecond
}

func Load(path string) (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port:        8700,
			MetricsPort: 8701,
			RateLimit:   600,
		},
		Sessions: SessionsConfig{
			IdleTimeoutMs:   1800000,
			SweepIntervalMs: 60000,
			MaxSessions:     1000,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	applyEnv(cfg)
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("VERDICT_PORT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = n
		}
	}
	if v := os.Getenv("VERDICT_METRICS_PORT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Server.MetricsPort = n
		}
	}
	if v := os.Getenv("VERDICT_ADMIN_TOKEN"); v != "" {
		cfg.Server.AdminToken = v
	}
	if v := os.Getenv("VERDICT_RATE_LIMIT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Server.RateLimit = n
		}
	}
	if v := os.Getenv("VERDICT_DATABASE_URL"); v != "" {
		cfg.Database.URL = v
	}
	if v := os.Getenv("VERDICT_HERMES_URL"); v != "" {
		cfg.Hermes.URL = v
	}
	if v := os.Getenv("VERDICT_IDLE_TIMEOUT_MS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Sessions.IdleTimeoutMs = n
		}
	}
	if v := os.Getenv("VERDICT_SWEEP_INTERVAL_MS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Sessions.SweepIntervalMs = n
		}
	}
	if v := os.Getenv("VERDICT_MAX_SESSIONS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Sessions.MaxSessions = n
		}
	}
	if v := os.Getenv("VERDICT_EXCLUDE_UNRATED"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Scoring.ExcludeUnrated = b
		}
	}
	if v := os.Getenv("VERDICT_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("VERDICT_LOG_FORMAT"); v != "" {
		cfg.Logging.Format = v
	}
}
