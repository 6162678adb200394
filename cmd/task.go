package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ralphlabs/conductor/internal/agent"
	"github.com/ralphlabs/conductor/internal/prompts"
	"github.com/ralphlabs/conductor/internal/ui"
	"github.com/ralphlabs/conductor/internal/vcsx"
)

var taskCmd = &cobra.Command{
	Use:   "task <description>",
	Short: "Ask the orchestrator role to fold an ad-hoc task into tasks.json",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runTask,
}

func init() {
	rootCmd.AddCommand(taskCmd)
}

func runTask(cmd *cobra.Command, args []string) error {
	description := strings.Join(args, " ")

	ok, err := ui.Confirm("Add task?", fmt.Sprintf("Ask the orchestrator to fold this into tasks.json:\n\n%s", description))
	if err != nil {
		return fmt.Errorf("confirming task addition: %w", err)
	}
	if !ok {
		fmt.Fprintln(os.Stdout, "cancelled")
		return nil
	}

	cfg := loadEffectiveConfig()
	if err := initLogging(cfg); err != nil {
		return fmt.Errorf("initializing logging: %w", err)
	}

	runner := buildRunner(cfg)
	ctx := context.Background()
	result, err := runner.RunForeground(ctx,
		prompts.Orchestrate("operator-requested task", description),
		cfg.Engine.Workspace, agent.Options{}, agent.Callbacks{}, nil)
	if err != nil {
		return fmt.Errorf("running orchestrator invocation: %w", err)
	}
	if result.IsError {
		return fmt.Errorf("orchestrator invocation failed: %s", result.ResultText)
	}

	if err := vcsx.Open(cfg.Engine.Workspace).CommitAll(ctx, "add task: "+description); err != nil {
		return fmt.Errorf("committing task-list update: %w", err)
	}
	fmt.Fprintln(os.Stdout, "task added")
	return nil
}
