package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ralphlabs/conductor/internal/tasks"
)

var skipTask bool

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Reset every non-completed task back to pending",
	RunE:  runResetAll,
}

var resetTaskCmd = &cobra.Command{
	Use:   "reset-task <id>",
	Short: "Reset a single task back to pending, or mark it skipped with --skip",
	Args:  cobra.ExactArgs(1),
	RunE:  runResetTask,
}

func init() {
	resetTaskCmd.Flags().BoolVar(&skipTask, "skip", false,
		"Mark the task skipped instead of resetting it to pending")
	rootCmd.AddCommand(resetCmd)
	rootCmd.AddCommand(resetTaskCmd)
}

func runResetAll(cmd *cobra.Command, args []string) error {
	cfg := loadEffectiveConfig()
	if err := tasks.Open(cfg.Engine.Workspace).ResetAll(); err != nil {
		return fmt.Errorf("resetting tasks: %w", err)
	}
	fmt.Fprintln(os.Stdout, "all non-completed tasks reset to pending")
	return nil
}

func runResetTask(cmd *cobra.Command, args []string) error {
	cfg := loadEffectiveConfig()
	store := tasks.Open(cfg.Engine.Workspace)
	id := args[0]

	if skipTask {
		if err := store.Skip(id); err != nil {
			return fmt.Errorf("skipping task %s: %w", id, err)
		}
		fmt.Fprintf(os.Stdout, "task %s marked skipped\n", id)
		return nil
	}

	if err := store.Reset(id); err != nil {
		return fmt.Errorf("resetting task %s: %w", id, err)
	}
	fmt.Fprintf(os.Stdout, "task %s reset to pending\n", id)
	return nil
}
