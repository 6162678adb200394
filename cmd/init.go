package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ralphlabs/conductor/internal/agent"
	"github.com/ralphlabs/conductor/internal/prompts"
	"github.com/ralphlabs/conductor/internal/tasks"
	"github.com/ralphlabs/conductor/internal/vcsx"
)

var initCmd = &cobra.Command{
	Use:   "init [prompt]",
	Short: "Create or adopt a workspace, optionally bootstrapping tasks.json from a prompt",
	Long: `Init creates the workspace directory if it does not exist, runs
git init, and ensures .state/ is ignored. If a prompt is given, it invokes
the agent once in plan-only mode to populate tasks.json.`,
	Args: cobra.ArbitraryArgs,
	RunE: runInit,
}

func init() {
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, args []string) error {
	cfg := loadEffectiveConfig()
	if err := initLogging(cfg); err != nil {
		return fmt.Errorf("initializing logging: %w", err)
	}

	ws := cfg.Engine.Workspace
	if err := os.MkdirAll(ws, 0o755); err != nil {
		return fmt.Errorf("creating workspace %s: %w", ws, err)
	}

	repo := vcsx.Open(ws)
	ctx := context.Background()
	if err := repo.Init(ctx); err != nil {
		return fmt.Errorf("initializing git repository: %w", err)
	}
	if err := repo.EnsureIgnored(".state/"); err != nil {
		return fmt.Errorf("updating .gitignore: %w", err)
	}

	prompt := strings.TrimSpace(strings.Join(args, " "))
	if prompt == "" {
		fmt.Fprintln(os.Stdout, "workspace ready; edit tasks.json directly or run `conductor init \"<prompt>\"` to bootstrap it")
		return nil
	}

	runner := buildRunner(cfg)
	result, err := runner.RunForeground(ctx, prompts.Bootstrap(prompt), ws, agent.Options{}, agent.Callbacks{}, nil)
	if err != nil {
		return fmt.Errorf("running bootstrap invocation: %w", err)
	}
	if result.IsError {
		return fmt.Errorf("bootstrap invocation failed: %s", result.ResultText)
	}

	if err := repo.CommitAll(ctx, "bootstrap tasks.json"); err != nil {
		return fmt.Errorf("committing bootstrapped tasks: %w", err)
	}

	stats, err := tasks.Open(ws).LoadStats()
	if err != nil {
		return fmt.Errorf("loading task stats: %w", err)
	}
	fmt.Fprintf(os.Stdout, "bootstrapped %d task(s)\n", stats.Total)
	return nil
}
