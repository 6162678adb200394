package cmd

import (
	"context"
	"fmt"
	"os"

	tea "charm.land/bubbletea/v2"
	"github.com/spf13/cobra"

	"github.com/ralphlabs/conductor/config"
	"github.com/ralphlabs/conductor/internal/agent"
	"github.com/ralphlabs/conductor/internal/engine"
	applogger "github.com/ralphlabs/conductor/internal/logger"
	"github.com/ralphlabs/conductor/internal/ui"
)

var (
	maxTasks int
	useTUI   bool
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the task loop until it completes, stalls, or is interrupted",
	Long: `Run drives the engine loop: pick the next task, run a Worker on it,
supervise it, and hand off to the Validator or Orchestrator as needed,
repeating until tasks.json is exhausted or --max-tasks is reached.`,
	RunE: runRun,
}

func init() {
	runCmd.Flags().IntVar(&maxTasks, "max-tasks", 0,
		"Stop after completing this many tasks (0 = unbounded)")
	runCmd.Flags().BoolVar(&useTUI, "tui", false,
		"Run the live dashboard instead of plain-text progress output")
	rootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, args []string) error {
	cfg := loadEffectiveConfig()
	if cmd.Flags().Changed("tui") {
		cfg.UI.Enabled = useTUI
	}

	if err := initLogging(cfg); err != nil {
		return fmt.Errorf("initializing logging: %w", err)
	}

	if _, err := os.Stat(cfg.Engine.Workspace); err != nil {
		return fmt.Errorf("workspace %s: %w (run `conductor init` first)", cfg.Engine.Workspace, err)
	}

	runner := buildRunner(cfg)

	interrupts, ctx := engine.NewInterruptHandler(cmd.Context())
	defer interrupts.Stop()

	if cfg.UI.Enabled {
		return runWithDashboard(ctx, cfg, runner, interrupts)
	}
	return runPlain(ctx, cfg, runner, interrupts)
}

// runPlain drives the engine loop with progress printed straight to stdout.
func runPlain(ctx context.Context, cfg *config.Config, runner *agent.Runner, interrupts *engine.InterruptHandler) error {
	eng := engine.New(cfg.Engine.Workspace, cfg.Engine, runner, interrupts.Stopped, os.Stdout)
	eng.SetWorkerPIDHook(interrupts.SetActiveWorkerPID)

	if err := eng.Run(ctx, maxTasks); err != nil {
		return fmt.Errorf("engine run: %w", err)
	}
	return nil
}

// runWithDashboard drives the engine loop in a background goroutine,
// feeding its progress output through a ChannelWriter into the bubbletea
// dashboard running on the main goroutine.
func runWithDashboard(ctx context.Context, cfg *config.Config, runner *agent.Runner, interrupts *engine.InterruptHandler) error {
	msgCh := make(chan tea.Msg, 256)

	eng := engine.New(cfg.Engine.Workspace, cfg.Engine, runner, interrupts.Stopped, ui.NewChannelWriter(msgCh))
	eng.SetWorkerPIDHook(interrupts.SetActiveWorkerPID)

	go func() {
		err := eng.Run(ctx, maxTasks)
		if err != nil {
			msgCh <- ui.LoopErrorMsg{Err: err}
		} else {
			msgCh <- ui.LoopDoneMsg{}
		}
	}()

	model := ui.New(*cfg, msgCh)
	if err := ui.Run(model); err != nil {
		applogger.Error().Err(err).Msg("dashboard exited with an error")
		return err
	}
	return nil
}
