package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Events    EventsConfig    `yaml:"events"`
	Selection SelectionConfig `yaml:"selection"`
	API       APIConfig       `yaml:"api"`
	Logging   LoggingConfig   `yaml:"logging"`
}

type ServerConfig struct {
	Port        int    `yaml:"port"`
	MetricsPort int    `yaml:"metrics_port"`
	AdminToken  string `yaml:"admin_token"`
}

type DatabaseConfig struct {
	URL string `yaml:"url"`
}

type EventsConfig struct {
	URL string `yaml:"url"`
}

type SelectionConfig struct {
	PenaltyBase   float64 `yaml:"penalty_base"`
	DefaultPreset string  `yaml:"default_preset"`
	PrereqDepth   int     `yaml:"prereq_depth"`
	FutureDepth   int     `yaml:"future_depth"`
}

type APIConfig struct {
	RateLimitPerMinute int `yaml:"rate_limit_per_minute"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

func Load(path string) (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port:        8700,
			MetricsPort: 8701,
		},
		Events: EventsConfig{
			URL: "nats://localhost:4222",
		},
		Selection: SelectionConfig{
			PenaltyBase:   0.2,
			DefaultPreset: "balanced",
			PrereqDepth:   99,
			FutureDepth:   2,
		},
		API: APIConfig{
			RateLimitPerMinute: 120,
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
	if v := os.Getenv("COMPASS_PORT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = n
		}
	}
	if v := os.Getenv("COMPASS_METRICS_PORT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Server.MetricsPort = n
		}
	}
	if v := os.Getenv("COMPASS_ADMIN_TOKEN"); v != "" {
		cfg.Server.AdminToken = v
	}
	if v := os.Getenv("COMPASS_DATABASE_URL"); v != "" {
		cfg.Database.URL = v
	}
	if v := os.Getenv("COMPASS_NATS_URL"); v != "" {
		cfg.Events.URL = v
	}
	if v := os.Getenv("COMPASS_PENALTY_BASE"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f >= 0 {
			cfg.Selection.PenaltyBase = f
		}
	}
	if v := os.Getenv("COMPASS_DEFAULT_PRESET"); v != "" {
		cfg.Selection.DefaultPreset = v
	}
	if v := os.Getenv("COMPASS_PREREQ_DEPTH"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Selection.PrereqDepth = n
		}
	}
	if v := os.Getenv("COMPASS_RATE_LIMIT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.API.RateLimitPerMinute = n
		}
	}
	if v := os.Getenv("COMPASS_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
}
