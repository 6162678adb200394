// Package config provides configuration management for conductor.
package config

// DefaultConfig returns a configuration with sensible default values.
// These defaults can be overridden by loading a configuration file.
func DefaultConfig() *Config {
	return &Config{
		LogLevel: "info",
		Debug:    false,
		Quiet:    false,
		UI: UIConfig{
			Enabled:   false,
			AltScreen: false,
			ThemeName: "default",
		},
		App: AppConfig{
			Name:    "conductor",
			Version: "1.0.0",
		},
		Engine: EngineConfig{
			Workspace:                 ".",
			Agent:                     "claude",
			AgentModel:                "",
			AgentBinary:               "claude",
			MaxFailedRetries:          3,
			OrchestrationAttempts:     3,
			ReviewAttempts:            3,
			RealtimeIntervalMs:        2000,
			CheckIntervalMs:           1800000,
			GracefulShutdownTimeoutMs: 5000,
			Pricing: PricingConfig{
				InputPerMillionUSD:  3,
				OutputPerMillionUSD: 15,
			},
		},
	}
}

// DefaultConfigJSON returns the default configuration as a JSON byte slice.
// This can be used to create a default configuration file or as a fallback
// when no configuration file is found.
func DefaultConfigJSON() ([]byte, error) {
	return DefaultConfig().ToJSON()
}
