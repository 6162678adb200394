// Package engine implements the top-level state machine that drives a
// workspace's task list to completion, wiring the Worker, Supervisor,
// Validator, and Orchestrator roles together over the task store, cost
// ledger, and VCS helper.
package engine

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/ralphlabs/conductor/config"
	"github.com/ralphlabs/conductor/internal/agent"
	"github.com/ralphlabs/conductor/internal/cost"
	"github.com/ralphlabs/conductor/internal/logger"
	"github.com/ralphlabs/conductor/internal/orchestrator"
	"github.com/ralphlabs/conductor/internal/runstate"
	"github.com/ralphlabs/conductor/internal/supervisor"
	"github.com/ralphlabs/conductor/internal/tasks"
	"github.com/ralphlabs/conductor/internal/validate"
	"github.com/ralphlabs/conductor/internal/vcsx"
	"github.com/ralphlabs/conductor/internal/worker"
)

// Engine owns one workspace's run of the loop.
type Engine struct {
	workspace string
	cfg       config.EngineConfig
	out       io.Writer

	store  *tasks.Store
	ledger *cost.Ledger
	repo   *vcsx.Repo

	fgRunner agent.ForegroundRunner
	bgRunner agent.BackgroundRunner
	rates    agent.Rates

	sup  *supervisor.Supervisor
	val  *validate.Validator
	orch *orchestrator.Orchestrator

	failedRetries int
	stopRequested func() bool
	onWorkerPID   func(pid int)
}

// SetWorkerPIDHook registers a callback invoked with the active worker's PID
// when it starts, and with 0 when it exits. Used to let an InterruptHandler
// escalate a second signal directly to the worker's process group.
func (e *Engine) SetWorkerPIDHook(fn func(pid int)) {
	e.onWorkerPID = fn
}

// New constructs an Engine for workspace using cfg's policy constants. runner
// is the concrete Agent Runner, used as both the ForegroundRunner and
// BackgroundRunner (it satisfies both interfaces).
func New(workspace string, cfg config.EngineConfig, runner *agent.Runner, stopRequested func() bool, out io.Writer) *Engine {
	var rates agent.Rates
	if runner != nil {
		rates = runner.Rates
	}
	return &Engine{
		workspace:     workspace,
		cfg:           cfg,
		out:           out,
		store:         tasks.Open(workspace),
		ledger:        cost.Open(workspace),
		repo:          vcsx.Open(workspace),
		fgRunner:      runner,
		bgRunner:      runner,
		rates:         rates,
		sup:           supervisor.New(runner),
		val:           validate.New(runner, workspace),
		orch:          orchestrator.New(runner, workspace).WithAttempts(cfg.OrchestrationAttempts, cfg.ReviewAttempts),
		stopRequested: stopRequested,
	}
}

// Run drives the loop until the task list is exhausted, the failed-retry
// budget is saturated, or stopRequested reports true. maxTasks, when
// positive, bounds how many tasks are completed in this call (0 means
// unbounded).
func (e *Engine) Run(ctx context.Context, maxTasks int) error {
	if err := e.ledger.LoadTotals(); err != nil {
		return fmt.Errorf("loading cost ledger: %w", err)
	}

	runErr := e.runLoop(ctx, maxTasks)

	status := runstate.StatusStopped
	if runErr != nil {
		status = runstate.StatusError
	}
	e.saveRunState("", status)

	return runErr
}

func (e *Engine) runLoop(ctx context.Context, maxTasks int) error {
	completed := 0
	for {
		if e.stopRequested != nil && e.stopRequested() {
			e.printf("stop requested; exiting before next task\n")
			return nil
		}

		failed, err := e.store.FailedTasks()
		if err != nil {
			return fmt.Errorf("loading failed tasks: %w", err)
		}

		if len(failed) > 0 {
			if e.failedRetries >= e.cfg.MaxFailedRetries {
				e.printFailedSummary(failed)
				return fmt.Errorf("failed-task retry budget exhausted (%d/%d)", e.failedRetries, e.cfg.MaxFailedRetries)
			}
			e.failedRetries++
			e.printf("recovering %d failed task(s), attempt %d/%d\n", len(failed), e.failedRetries, e.cfg.MaxFailedRetries)

			report, err := e.orch.Run(ctx, "handle failed tasks", describeFailed(failed))
			if err != nil {
				return fmt.Errorf("orchestrator recovery run: %w", err)
			}
			e.recordCost(cost.SourceOrchestrator, "", report.CostUSD, report.Estimated, report.Message)
			if !report.Success {
				for _, t := range failed {
					_ = e.store.MarkFailed(t.ID, fmt.Errorf("orchestrator recovery failed: %s", report.Message), t.Notes)
				}
			}
			continue
		}
		e.failedRetries = 0

		next, err := e.store.Next()
		if err != nil {
			return fmt.Errorf("loading next task: %w", err)
		}
		if next == nil {
			e.printf("task list complete\n")
			return nil
		}
		if maxTasks > 0 && completed >= maxTasks {
			e.printf("reached --max-tasks limit (%d)\n", maxTasks)
			return nil
		}

		e.saveRunState(next.ID, runstate.StatusRunning)
		if err := e.runTask(ctx, *next); err != nil {
			return err
		}
		if list, err := e.store.Load(); err == nil {
			for _, lt := range list {
				if lt.ID == next.ID && lt.Status == tasks.StatusCompleted {
					completed++
				}
			}
		}
	}
}

// runTask executes the engine loop body for a single task: snapshot,
// mark in-progress, start the worker, supervise it until it exits or a
// decision fires, then finalize.
func (e *Engine) runTask(ctx context.Context, t tasks.Task) error {
	snapshotCommit, err := e.repo.HeadHash(ctx)
	if err != nil {
		return fmt.Errorf("snapshotting HEAD before task %s: %w", t.ID, err)
	}

	if err := e.store.MarkInProgress(t.ID, t.SessionID); err != nil {
		return fmt.Errorf("marking task %s in progress: %w", t.ID, err)
	}

	w := worker.New(t, e.workspace, e.bgRunner, e.rates)
	pid, err := w.Start()
	if err != nil {
		notes := fmt.Sprintf("failed to start worker: %v", err)
		_ = e.store.MarkFailed(t.ID, err, notes)
		return nil
	}
	e.printf("task %s: worker started (pid %d)\n", t.ID, pid)
	if e.onWorkerPID != nil {
		e.onWorkerPID(pid)
		defer e.onWorkerPID(0)
	}

	decision, interrupted := e.superviseWorker(ctx, &t, w)
	if interrupted {
		return e.Shutdown(context.Background(), t, w, snapshotCommit)
	}

	if decision != nil && decision.Action == supervisor.ActionOrchestrate {
		return e.handleOrchestrateDecision(ctx, t, w, snapshotCommit, decision.Reason)
	}

	return e.finalizeWorker(ctx, t, w, snapshotCommit)
}

// superviseWorker runs the realtime-echo / periodic-check loop until the
// worker exits, a Supervisor decision to orchestrate fires, or ctx is
// cancelled (user interrupt). Returns (nil, false) if the worker simply
// exited on its own, (decision, false) if the Supervisor decided to
// orchestrate, or (nil, true) if ctx was cancelled first.
func (e *Engine) superviseWorker(ctx context.Context, t *tasks.Task, w *worker.Worker) (*supervisor.Decision, bool) {
	realtimeInterval := durationOrDefault(e.cfg.RealtimeIntervalMs, 2*time.Second)
	checkInterval := durationOrDefault(e.cfg.CheckIntervalMs, 30*time.Minute)

	realtimeTicker := time.NewTicker(realtimeInterval)
	defer realtimeTicker.Stop()
	checkTicker := time.NewTicker(checkInterval)
	defer checkTicker.Stop()

	type checkResult struct {
		decision supervisor.Decision
	}
	resultCh := make(chan checkResult, 1)
	checkInFlight := false
	checkOrdinal := 0
	var recentEvents []agent.Event

	startCheck := func() {
		checkInFlight = true
		checkOrdinal++
		go func(ordinal int) {
			d := e.sup.Check(ctx, *t, ordinal, w.ElapsedSeconds(), w.LogPath())
			resultCh <- checkResult{decision: d}
		}(checkOrdinal)
	}

	for {
		if !w.IsAlive() {
			e.drainEvents(w, &recentEvents)
			if checkInFlight {
				e.sup.Cancel()
			}
			return nil, false
		}

		select {
		case <-ctx.Done():
			if checkInFlight {
				e.sup.Cancel()
			}
			return nil, true

		case <-realtimeTicker.C:
			before := len(recentEvents)
			e.drainEvents(w, &recentEvents)
			// A run of repeated tool calls escalates to a full Supervisor
			// check without waiting for the next periodic tick.
			if !checkInFlight && len(recentEvents) > before && supervisor.ShouldEscalate(recentEvents) {
				startCheck()
			}

		case <-checkTicker.C:
			if !checkInFlight {
				startCheck()
			}

		case res := <-resultCh:
			checkInFlight = false
			e.recordCost(cost.SourceSupervisor, t.ID, res.decision.CostUSD, res.decision.Estimated, res.decision.Reason)
			if res.decision.Action == supervisor.ActionOrchestrate {
				e.printf("task %s: supervisor requests orchestration (%s)\n", t.ID, res.decision.Reason)
				d := res.decision
				return &d, false
			}
			e.printf("task %s: supervisor check #%d -> continue (%s)\n", t.ID, checkOrdinal, res.decision.Reason)
		}
	}
}

const recentEventsWindow = 50

// drainEvents reads newly available worker events, prints them, and
// appends them to *recent (capped at recentEventsWindow, for the
// quick-check loop-detection heuristic).
func (e *Engine) drainEvents(w *worker.Worker, recent *[]agent.Event) {
	events, err := w.ReadNewEvents()
	if err != nil {
		logger.Warn().Err(err).Msg("reading worker events")
		return
	}
	for _, ev := range events {
		e.printEvent(ev)
	}
	*recent = append(*recent, events...)
	if len(*recent) > recentEventsWindow {
		*recent = (*recent)[len(*recent)-recentEventsWindow:]
	}
}

func (e *Engine) printEvent(ev agent.Event) {
	switch ev.Type {
	case agent.EventAssistantText:
		e.printf("  %s\n", ev.Text)
	case agent.EventToolUse:
		e.printf("  [tool] %s(%s)\n", ev.ToolName, ev.ToolInputSummary)
	case agent.EventResult:
		if ev.IsError {
			e.printf("  [result:error] %s\n", ev.ResultText)
		}
	}
}

// finalizeWorker inspects the worker's Result: if it was an error or reports
// TASK_BLOCKED, mark the task failed with the result text as notes; otherwise
// run the Validator, and on Validator failure run the Orchestrator instead of
// marking failed.
func (e *Engine) finalizeWorker(ctx context.Context, t tasks.Task, w *worker.Worker, snapshotCommit string) error {
	lr, err := w.ReadLog()
	if err != nil {
		return fmt.Errorf("reading worker log for task %s: %w", t.ID, err)
	}
	e.recordCost(cost.SourceWorker, t.ID, lr.CostUSD, lr.Estimated, "worker run")

	blocked := strings.Contains(lr.ResultText, "TASK_BLOCKED:")
	if lr.IsError || blocked {
		notes := truncate(lr.ResultText, 2000)
		cause := fmt.Errorf("worker reported an error")
		if blocked {
			cause = fmt.Errorf("worker reported TASK_BLOCKED")
		}
		_ = e.store.MarkFailed(t.ID, cause, notes)
		e.printf("task %s: worker failed\n", t.ID)
		return nil
	}

	report, err := e.val.Validate(ctx, t)
	if err != nil {
		return fmt.Errorf("validating task %s: %w", t.ID, err)
	}
	e.recordCost(cost.SourceValidator, t.ID, report.CostUSD, report.Estimated, report.Message)

	if report.Success {
		if err := e.store.MarkCompleted(t.ID); err != nil {
			return fmt.Errorf("marking task %s completed: %w", t.ID, err)
		}
		e.printf("task %s: completed (%s)\n", t.ID, report.Message)
		return nil
	}

	e.printf("task %s: validation failed (%s); invoking orchestrator\n", t.ID, report.Message)
	orchReport, err := e.orch.Run(ctx, "validator left tree dirty", strings.Join(report.RemainingDirty, ", "))
	if err != nil {
		return fmt.Errorf("orchestrator run after failed validation for task %s: %w", t.ID, err)
	}
	e.recordCost(cost.SourceOrchestrator, t.ID, orchReport.CostUSD, orchReport.Estimated, orchReport.Message)
	if !orchReport.Success {
		if rerr := e.repo.Restore(ctx, snapshotCommit); rerr != nil {
			logger.Warn().Err(rerr).Str("task_id", t.ID).Msg("restoring snapshot after orchestrator failure")
		}
		_ = e.store.MarkFailed(t.ID, fmt.Errorf("orchestrator failed: %s", orchReport.Message), report.Message)
	}
	return nil
}

// handleOrchestrateDecision performs a graceful worker shutdown, persists
// the handover, then invokes the Orchestrator.
func (e *Engine) handleOrchestrateDecision(ctx context.Context, t tasks.Task, w *worker.Worker, snapshotCommit, reason string) error {
	report, err := w.GracefulShutdown(ctx, reason)
	if err != nil {
		return fmt.Errorf("gracefully shutting down worker for task %s: %w", t.ID, err)
	}
	e.recordCost(cost.SourceWorkerCleanup, t.ID, report.CostUSD, report.Estimated, reason)

	summary := report.HandoverSummary
	if summary == "" {
		lr, lerr := w.ReadLog()
		if lerr == nil {
			summary = worker.SynthesizeHandover(lr.Events)
		}
	}
	if err := e.store.UpdateNotes(t.ID, summary); err != nil {
		logger.Warn().Err(err).Str("task_id", t.ID).Msg("persisting handover notes")
	}

	orchReport, err := e.orch.Run(ctx, reason, summary)
	if err != nil {
		return fmt.Errorf("orchestrator run for task %s: %w", t.ID, err)
	}
	e.recordCost(cost.SourceOrchestrator, t.ID, orchReport.CostUSD, orchReport.Estimated, orchReport.Message)
	if !orchReport.Success {
		if rerr := e.repo.Restore(ctx, snapshotCommit); rerr != nil {
			logger.Warn().Err(rerr).Str("task_id", t.ID).Msg("restoring snapshot after orchestrator failure")
		}
		_ = e.store.MarkFailed(t.ID, fmt.Errorf("orchestrator failed: %s", orchReport.Message), summary)
	}
	return nil
}

// Shutdown handles an interrupt: stop scheduling new work on w, persist the
// handover, and on cleanup failure restore the VCS tree to snapshotCommit.
// Successful cleanup means partial work is preserved.
func (e *Engine) Shutdown(ctx context.Context, t tasks.Task, w *worker.Worker, snapshotCommit string) error {
	report, err := w.GracefulShutdown(ctx, "user requested termination")
	if err != nil {
		return fmt.Errorf("gracefully shutting down worker for task %s: %w", t.ID, err)
	}
	e.recordCost(cost.SourceWorkerCleanup, t.ID, report.CostUSD, report.Estimated, "user requested termination")

	summary := report.HandoverSummary
	if summary == "" {
		lr, lerr := w.ReadLog()
		if lerr == nil {
			summary = worker.SynthesizeHandover(lr.Events)
		}
	}
	if err := e.store.UpdateNotes(t.ID, summary); err != nil {
		logger.Warn().Err(err).Str("task_id", t.ID).Msg("persisting handover notes on shutdown")
	}

	if !report.Success {
		if rerr := e.repo.Restore(ctx, snapshotCommit); rerr != nil {
			return fmt.Errorf("restoring snapshot after failed cleanup: %w", rerr)
		}
	}

	e.printf("cost summary: $%.4f total\n", e.ledger.Total())
	return nil
}

func (e *Engine) recordCost(source cost.Source, taskID string, amount float64, estimated bool, details string) {
	if amount == 0 {
		return
	}
	rec := cost.Record{Source: source, CostUSD: amount, TaskID: taskID, Details: details, Estimated: estimated}
	if err := e.ledger.Append(rec); err != nil {
		logger.Warn().Err(err).Msg("appending cost record")
	}
}

// saveRunState persists the engine's current position so `status` and a
// restarted engine can observe it. Failures are logged, not propagated: a
// missed runstate write never blocks the loop.
func (e *Engine) saveRunState(currentTaskID, status string) {
	s := &runstate.State{
		CurrentTaskID: currentTaskID,
		Status:        status,
		FailedRetries: e.failedRetries,
		ActiveAgent:   e.cfg.Agent,
		ActiveModel:   e.cfg.AgentModel,
	}
	if err := runstate.Save(e.workspace, s); err != nil {
		logger.Warn().Err(err).Msg("saving run state")
	}
}

func (e *Engine) printFailedSummary(failed []tasks.Task) {
	e.printf("failed-task retry budget exhausted; %d task(s) remain failed:\n", len(failed))
	for _, t := range failed {
		e.printf("  %s: %s (%s)\n", t.ID, t.Description, t.ErrorMessage)
	}
}

func (e *Engine) printf(format string, args ...any) {
	if e.out == nil {
		return
	}
	fmt.Fprintf(e.out, format, args...)
}

func describeFailed(failed []tasks.Task) string {
	var b strings.Builder
	for _, t := range failed {
		fmt.Fprintf(&b, "- %s: %s (%s)\n", t.ID, t.Description, t.ErrorMessage)
	}
	return b.String()
}

func durationOrDefault(ms int, def time.Duration) time.Duration {
	if ms <= 0 {
		return def
	}
	return time.Duration(ms) * time.Millisecond
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "…"
}
