// Package config provides configuration loading for workflowd.
//
// Configuration is loaded from an optional YAML file and overridden by
// environment variables, with hardcoded defaults underneath.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/fyrsmithlabs/workflowd/internal/logging"
	"github.com/fyrsmithlabs/workflowd/internal/orchestrator"
)

// Config holds the complete workflowd configuration.
type Config struct {
	Server       ServerConfig        `koanf:"server"`
	Orchestrator orchestrator.Config `koanf:"orchestrator"`
	Definitions  DefinitionsConfig   `koanf:"definitions"`
	State        StateConfig         `koanf:"state"`
	Events       EventsConfig        `koanf:"events"`
	Logging      logging.Config      `koanf:"logging"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"http_port"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`

	// RateLimit is the per-client request rate (requests per second).
	// Zero disables rate limiting.
	RateLimit float64 `koanf:"rate_limit"`
}

// DefinitionsConfig points at the workflow definition file.
type DefinitionsConfig struct {
	Path  string `koanf:"path"`
	Watch bool   `koanf:"watch"`
}

// StateConfig holds the persisted-state file location.
type StateConfig struct {
	Path string `koanf:"path"`
}

// EventsConfig holds NATS event bus configuration.
type EventsConfig struct {
	Enabled bool `koanf:"enabled"`

	// Embedded runs an in-process NATS server instead of connecting to
	// an external one.
	Embedded bool   `koanf:"embedded"`
	URL      string `koanf:"url"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d (must be 1-65535)", c.Server.Port)
	}
	if c.Server.ShutdownTimeout <= 0 {
		return errors.New("shutdown timeout must be positive")
	}
	if c.Server.RateLimit < 0 {
		return errors.New("rate limit must not be negative")
	}
	if c.Orchestrator.MaxConcurrent < 1 {
		return errors.New("orchestrator max_concurrent must be at least 1")
	}
	if c.Events.Enabled && !c.Events.Embedded && c.Events.URL == "" {
		return errors.New("events url required when events enabled without embedded server")
	}
	return c.Logging.Validate()
}

// applyDefaults sets default values for missing configuration fields.
func applyDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 9290
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = 10 * time.Second
	}
	if cfg.Orchestrator.MaxConcurrent == 0 {
		cfg.Orchestrator = orchestrator.DefaultConfig()
	}
	if cfg.State.Path == "" {
		cfg.State.Path = ".workflowd/state.json"
	}
	if cfg.Logging.Level == "" {
		cfg.Logging = logging.DefaultConfig()
	}
}
