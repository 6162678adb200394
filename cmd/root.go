// Package cmd provides the CLI commands for conductor using Cobra.
package cmd

import (
	"github.com/spf13/cobra"
)

var (
	// cfgFile holds the path to the configuration file.
	cfgFile string

	// debugMode indicates if debug mode is enabled.
	debugMode bool

	// logLevel sets the logging verbosity.
	logLevel string

	// quiet suppresses realtime worker-event echo.
	quiet bool

	// workspace is the directory containing tasks.json and .state/.
	workspace string

	// agentBackend selects the coding-agent CLI backend.
	agentBackend string

	// agentModel selects a model for backends that support model selection.
	agentModel string
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "conductor",
	Short: "Drive a coding agent through a task list to completion",
	Long: `conductor runs a long-lived coding-agent CLI through a task list,
one task at a time, supervising it for stalls and handing off to an
orchestrator role whenever the plan itself needs to change.

It wraps the agent invocation in a Worker/Supervisor/Validator/Orchestrator
loop backed by a JSON task store, an append-only cost ledger, and ordinary
git for commit discipline.`,
	Example: `  # Bootstrap a workspace from a prompt
  conductor init "build a CLI todo app"

  # Run the task loop
  conductor run

  # Check progress
  conductor status`,
	Version: "1.0.0",
}

// Execute runs the root command. Called from main.go.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "",
		"Path to configuration file (default: $HOME/.conductor.json)")
	rootCmd.PersistentFlags().BoolVar(&debugMode, "debug", false,
		"Enable debug mode with trace logging")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info",
		"Set logging level (trace, debug, info, warn, error, fatal)")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false,
		"Quiet mode (stored in the config; the run loop does not read it and still echoes worker events)")
	rootCmd.PersistentFlags().StringVarP(&workspace, "workspace", "w", ".",
		"Workspace directory containing tasks.json")
	rootCmd.PersistentFlags().StringVar(&agentBackend, "agent", "claude",
		"Coding-agent backend to use: claude, cursor, codex, opencode, kilo, pi")
	rootCmd.PersistentFlags().StringVar(&agentModel, "model", "",
		"Model for backends that support model selection (opencode, kilo, pi)")
}

// GetConfigFile returns the path to the configuration file.
func GetConfigFile() string { return cfgFile }

// IsDebugMode returns whether debug mode is enabled.
func IsDebugMode() bool { return debugMode }

// GetLogLevel returns the configured log level.
func GetLogLevel() string { return logLevel }

// WasLogLevelSet reports whether --log-level was explicitly passed.
func WasLogLevelSet() bool { return rootCmd.PersistentFlags().Changed("log-level") }

// IsQuiet returns whether -q/--quiet was passed.
func IsQuiet() bool { return quiet }

// WasQuietSet reports whether -q/--quiet was explicitly passed.
func WasQuietSet() bool { return rootCmd.PersistentFlags().Changed("quiet") }

// GetWorkspace returns the workspace flag value.
func GetWorkspace() string { return workspace }

// WasWorkspaceSet reports whether -w/--workspace was explicitly passed.
func WasWorkspaceSet() bool { return rootCmd.PersistentFlags().Changed("workspace") }

// GetAgent returns the agent backend flag value.
func GetAgent() string { return agentBackend }

// WasAgentSet reports whether --agent was explicitly passed.
func WasAgentSet() bool { return rootCmd.PersistentFlags().Changed("agent") }

// GetModel returns the model flag value.
func GetModel() string { return agentModel }

// WasModelSet reports whether --model was explicitly passed.
func WasModelSet() bool { return rootCmd.PersistentFlags().Changed("model") }
