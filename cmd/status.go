package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ralphlabs/conductor/internal/cost"
	"github.com/ralphlabs/conductor/internal/runstate"
	"github.com/ralphlabs/conductor/internal/tasks"
	"github.com/ralphlabs/conductor/internal/vcsx"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Print task counts, running cost, and recent VCS history",
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	cfg := loadEffectiveConfig()
	ws := cfg.Engine.Workspace

	rs, err := runstate.Load(ws)
	if err != nil {
		return fmt.Errorf("loading run state: %w", err)
	}
	fmt.Fprintf(os.Stdout, "engine: %s", rs.Status)
	if rs.CurrentTaskID != "" {
		fmt.Fprintf(os.Stdout, " (task %s)", rs.CurrentTaskID)
	}
	fmt.Fprintln(os.Stdout)

	stats, err := tasks.Open(ws).LoadStats()
	if err != nil {
		return fmt.Errorf("loading task stats: %w", err)
	}
	fmt.Fprintf(os.Stdout, "tasks: %d total  %d pending  %d in-progress  %d completed  %d failed  %d skipped\n",
		stats.Total, stats.Pending, stats.InProgress, stats.Completed, stats.Failed, stats.Skipped)

	ledger := cost.Open(ws)
	if err := ledger.LoadTotals(); err != nil {
		return fmt.Errorf("loading cost ledger: %w", err)
	}
	fmt.Fprintf(os.Stdout, "cost: $%.4f total\n", ledger.Total())
	for source, total := range ledger.Totals() {
		fmt.Fprintf(os.Stdout, "  %s: $%.4f\n", source, total)
	}

	log, err := vcsx.Open(ws).RecentLog(context.Background(), 10)
	if err != nil {
		return fmt.Errorf("reading recent commits: %w", err)
	}
	if len(log) > 0 {
		fmt.Fprintln(os.Stdout, "recent commits:")
		for _, line := range log {
			fmt.Fprintf(os.Stdout, "  %s\n", line)
		}
	}
	return nil
}
