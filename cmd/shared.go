package cmd

import (
	"os"
	"path/filepath"

	"github.com/ralphlabs/conductor/config"
	"github.com/ralphlabs/conductor/internal/agent"
	applogger "github.com/ralphlabs/conductor/internal/logger"
)

// loadEffectiveConfig builds the effective configuration following the
// priority order defaults -> config file -> CLI flags (only when a flag was
// explicitly set, so an unset flag never clobbers a config file value).
func loadEffectiveConfig() *config.Config {
	cfg := config.DefaultConfig()

	path := GetConfigFile()
	if path == "" {
		if home, err := os.UserHomeDir(); err == nil {
			path = filepath.Join(home, ".conductor.json")
		}
	}
	if path != "" {
		if fileCfg, err := config.Load(path); err == nil {
			cfg = fileCfg
		}
		// ErrConfigNotFound or a parse error silently falls back to defaults.
	}

	if IsDebugMode() {
		cfg.Debug = true
	}
	if WasLogLevelSet() {
		cfg.LogLevel = GetLogLevel()
	}
	if WasQuietSet() {
		cfg.Quiet = IsQuiet()
	}
	if WasWorkspaceSet() {
		cfg.Engine.Workspace = GetWorkspace()
	}
	if WasAgentSet() {
		cfg.Engine.Agent = GetAgent()
	}
	if WasModelSet() {
		cfg.Engine.AgentModel = GetModel()
	}

	return cfg
}

// initLogging configures the global logger for CLI use: stderr, console
// format, so it never collides with a --tui run's occupied terminal.
func initLogging(cfg *config.Config) error {
	return applogger.Init(applogger.Config{
		Level:  applogger.LogLevel(cfg.GetEffectiveLogLevel()),
		Format: "console",
		Output: os.Stderr,
	})
}

// buildRunner constructs the Agent Runner for cfg.Engine's backend
// selection.
func buildRunner(cfg *config.Config) *agent.Runner {
	backend := agent.Backend(cfg.Engine.Agent)
	rates := agent.Rates{
		InputPerMillionUSD:  cfg.Engine.Pricing.InputPerMillionUSD,
		OutputPerMillionUSD: cfg.Engine.Pricing.OutputPerMillionUSD,
	}
	runner := agent.NewRunner(backend, rates)
	if cfg.Engine.AgentModel != "" {
		runner.WithModel(cfg.Engine.AgentModel)
	}
	if cfg.Engine.AgentBinary != "" {
		runner.WithBinary(cfg.Engine.AgentBinary)
	}
	return runner
}
