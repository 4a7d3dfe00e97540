package engine

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds the runtime switches of a generation run.
type Config struct {
	// NoCache rescans the whole grid after every step. Debug only.
	NoCache bool `json:"no_cache" yaml:"no_cache"`

	// EagerPotential recomputes inference fields after every relevant edit
	// instead of lazily before the next selection.
	EagerPotential bool `json:"eager_potential" yaml:"eager_potential"`

	// Workers parallelises cold-start scans when greater than one.
	Workers int `json:"workers" yaml:"workers"`

	// MaxSteps stops a run after this many applications; 0 means unlimited.
	MaxSteps int `json:"max_steps" yaml:"max_steps"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `json:"log_level" yaml:"log_level"`

	Logger *slog.Logger `json:"-" yaml:"-"`
}

// DefaultConfig returns the standard configuration.
func DefaultConfig() Config {
	return Config{
		Workers:  1,
		LogLevel: "info",
	}
}

// LoadConfig loads configuration with priority: env > file > defaults.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if path != "" {
		if err := loadConfigFile(path, &cfg); err != nil {
			return cfg, fmt.Errorf("load config file: %w", err)
		}
	}
	loadConfigFromEnv(&cfg)
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func loadConfigFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		if jsonErr := json.Unmarshal(data, cfg); jsonErr != nil {
			return fmt.Errorf("parse config (tried YAML and JSON): YAML error: %v, JSON error: %w", err, jsonErr)
		}
	}
	return nil
}

func loadConfigFromEnv(cfg *Config) {
	if v := os.Getenv("REWRITE_NO_CACHE"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.NoCache = b
		}
	}
	if v := os.Getenv("REWRITE_EAGER_POTENTIAL"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.EagerPotential = b
		}
	}
	if v := os.Getenv("REWRITE_WORKERS"); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			cfg.Workers = i
		}
	}
	if v := os.Getenv("REWRITE_MAX_STEPS"); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			cfg.MaxSteps = i
		}
	}
	if v := os.Getenv("REWRITE_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
}

// Validate checks the configuration for impossible values.
func (c Config) Validate() error {
	if c.Workers < 0 {
		return fmt.Errorf("workers must be >= 0, got %d", c.Workers)
	}
	if c.MaxSteps < 0 {
		return fmt.Errorf("max_steps must be >= 0, got %d", c.MaxSteps)
	}
	if _, err := ParseLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}

// ParseLevel converts a level name to a slog.Level. Empty means info.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level %q", s)
	}
}
