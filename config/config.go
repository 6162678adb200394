// Package config provides configuration management for conductor. It
// supports loading from JSON files and embedded defaults, following the
// teacher's koanf-based loader exactly.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	koanfjson "github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
)

var (
	// ErrInvalidConfig is returned when configuration validation fails.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrConfigNotFound is returned when no configuration file is found.
	ErrConfigNotFound = errors.New("configuration file not found")
)

// Config holds the application configuration.
type Config struct {
	// LogLevel specifies the logging verbosity level.
	// Valid values: trace, debug, info, warn, error, fatal
	LogLevel string `json:"logLevel" koanf:"logLevel"`

	// Debug enables debug mode, which forces trace-level logging.
	Debug bool `json:"debug" koanf:"debug"`

	// Quiet is set from the config file or -q/--quiet and kept here; the
	// engine loop does not read it, so realtime worker events are echoed
	// whether it is set or not.
	Quiet bool `json:"quiet" koanf:"quiet"`

	// UI contains the optional live-dashboard configuration.
	UI UIConfig `json:"ui" koanf:"ui"`

	// App contains general application metadata.
	App AppConfig `json:"app" koanf:"app"`

	// Engine contains configuration for the execution and supervision engine.
	Engine EngineConfig `json:"engine" koanf:"engine"`
}

// EngineConfig holds the policy constants and agent-backend selection for
// the engine loop: timeouts, retry budgets, and pricing, not deep
// per-component configuration.
type EngineConfig struct {
	// Workspace is the directory containing tasks.json and .state/.
	Workspace string `json:"workspace" koanf:"workspace"`

	// Agent selects the coding-agent CLI backend (claude, cursor, codex,
	// opencode, kilo, pi).
	Agent string `json:"agent" koanf:"agent"`

	// AgentModel selects a model for backends that support model selection.
	AgentModel string `json:"agentModel" koanf:"agentModel"`

	// AgentBinary overrides the executable name used to invoke the agent CLI.
	AgentBinary string `json:"agentBinary" koanf:"agentBinary"`

	// MaxFailedRetries bounds how many times the engine loop will invoke the
	// Orchestrator to recover from a saturated failed-task backlog before
	// giving up and printing operator guidance.
	MaxFailedRetries int `json:"maxFailedRetries" koanf:"maxFailedRetries"`

	// OrchestrationAttempts and ReviewAttempts bound the Orchestrator's
	// internal orchestrate/review retry loops.
	OrchestrationAttempts int `json:"orchestrationAttempts" koanf:"orchestrationAttempts"`
	ReviewAttempts        int `json:"reviewAttempts" koanf:"reviewAttempts"`

	// RealtimeIntervalMs is how often the engine loop echoes fresh worker
	// events to the user while a Worker is running.
	RealtimeIntervalMs int `json:"realtimeIntervalMs" koanf:"realtimeIntervalMs"`

	// CheckIntervalMs is how often the engine loop schedules a Supervisor
	// check against a running Worker.
	CheckIntervalMs int `json:"checkIntervalMs" koanf:"checkIntervalMs"`

	// GracefulShutdownTimeoutMs is loaded with the rest of the config but is
	// not read by the Worker: Worker.Terminate always waits a fixed 5 seconds
	// after SIGINT before escalating to SIGKILL.
	GracefulShutdownTimeoutMs int `json:"gracefulShutdownTimeoutMs" koanf:"gracefulShutdownTimeoutMs"`

	// Pricing carries the per-million-token rates used to estimate cost from
	// a log with no terminal Result event.
	Pricing PricingConfig `json:"pricing" koanf:"pricing"`
}

// PricingConfig is the configured rate table for cost estimation.
type PricingConfig struct {
	InputPerMillionUSD  float64 `json:"inputPerMillionUsd" koanf:"inputPerMillionUsd"`
	OutputPerMillionUSD float64 `json:"outputPerMillionUsd" koanf:"outputPerMillionUsd"`
}

// UIConfig contains configuration specific to the optional live dashboard.
type UIConfig struct {
	// Enabled turns on the bubbletea dashboard for `run`. Equivalent to
	// passing --tui.
	Enabled bool `json:"enabled" koanf:"enabled"`

	// AltScreen runs the dashboard in alternate-screen (fullscreen) mode.
	AltScreen bool `json:"altScreen" koanf:"altScreen"`

	// ThemeName specifies the color theme to use.
	ThemeName string `json:"themeName" koanf:"themeName"`
}

// AppConfig contains general application metadata.
type AppConfig struct {
	Name    string `json:"name" koanf:"name"`
	Version string `json:"version" koanf:"version"`
}

// Load reads configuration from the specified file path. If the file does
// not exist, ErrConfigNotFound is returned so the caller can fall back to
// defaults.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, ErrConfigNotFound
	}

	k := koanf.New(".")
	if err := k.Load(file.Provider(path), koanfjson.Parser()); err != nil {
		return nil, fmt.Errorf("loading config from %s: %w", path, err)
	}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("parsing configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFromBytes loads configuration from a byte slice, starting from
// defaults and overlaying whatever fields are present in data.
func LoadFromBytes(data []byte) (*Config, error) {
	cfg := DefaultConfig()

	k := koanf.New(".")
	if err := k.Load(rawbytes.Provider(data), koanfjson.Parser()); err != nil {
		return nil, fmt.Errorf("loading config from bytes: %w", err)
	}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("parsing configuration: %w", err)
	}
	return cfg, nil
}

// Validate checks that the configuration is internally consistent.
func (c *Config) Validate() error {
	validLogLevels := map[string]bool{
		"trace": true, "debug": true, "info": true,
		"warn": true, "error": true, "fatal": true,
	}
	if !validLogLevels[c.LogLevel] {
		return fmt.Errorf("%w: invalid log level %q", ErrInvalidConfig, c.LogLevel)
	}
	if c.Engine.MaxFailedRetries < 1 {
		return fmt.Errorf("%w: engine.maxFailedRetries must be >= 1", ErrInvalidConfig)
	}
	if c.Engine.OrchestrationAttempts < 1 || c.Engine.ReviewAttempts < 1 {
		return fmt.Errorf("%w: engine orchestration/review attempts must be >= 1", ErrInvalidConfig)
	}
	return nil
}

// ToJSON converts the configuration to indented JSON.
func (c *Config) ToJSON() ([]byte, error) {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding configuration to JSON: %w", err)
	}
	return data, nil
}

// GetEffectiveLogLevel returns "trace" when Debug is set, else LogLevel.
func (c *Config) GetEffectiveLogLevel() string {
	if c.Debug {
		return "trace"
	}
	return c.LogLevel
}
