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

var learnCmd = &cobra.Command{
	Use:   "learn <suggestion>",
	Short: "Fold a lesson into the project's agent-instructions document",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runLearn,
}

func init() {
	rootCmd.AddCommand(learnCmd)
}

func runLearn(cmd *cobra.Command, args []string) error {
	suggestion := strings.Join(args, " ")

	ok, err := ui.Confirm("Update instructions?", fmt.Sprintf("Fold this lesson into the project's instructions document:\n\n%s", suggestion))
	if err != nil {
		return fmt.Errorf("confirming learn: %w", err)
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
		prompts.Learn(suggestion), cfg.Engine.Workspace, agent.Options{}, agent.Callbacks{}, nil)
	if err != nil {
		return fmt.Errorf("running learn invocation: %w", err)
	}
	if result.IsError {
		return fmt.Errorf("learn invocation failed: %s", result.ResultText)
	}

	if err := vcsx.Open(cfg.Engine.Workspace).CommitAll(ctx, "learn: "+suggestion); err != nil {
		return fmt.Errorf("committing instructions update: %w", err)
	}
	fmt.Fprintln(os.Stdout, "instructions updated")
	return nil
}
