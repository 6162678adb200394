// Package worker wraps one background agent invocation for one task:
// construction pins a task, a workspace, and a log path; Start composes the
// system and task prompts and launches the agent in its own process group.
package worker

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ralphlabs/conductor/internal/agent"
	"github.com/ralphlabs/conductor/internal/logger"
	"github.com/ralphlabs/conductor/internal/prompts"
	"github.com/ralphlabs/conductor/internal/tasks"
)

const gracefulShutdownTimeout = 5 * time.Second

// LogRead is the result of parsing a worker's log from the start: the
// accumulated typed events plus a terminal summary.
type LogRead struct {
	Events     []agent.Event
	Completed  bool
	IsError    bool
	ResultText string
	CostUSD    float64
	SessionID  string
	Estimated  bool
}

// CleanupReport is the outcome of gracefulShutdown.
type CleanupReport struct {
	Success         bool
	HandoverSummary string
	CostUSD         float64
	Estimated       bool
}

// Worker runs one task as a background agent process.
type Worker struct {
	task      tasks.Task
	workspace string
	logPath   string
	runner    agent.BackgroundRunner
	rates     agent.Rates

	handle      *agent.ProcessHandle
	startTime   time.Time
	readOffset  int64
	cleanupOnce *CleanupReport
}

// New constructs a Worker for t, pinned to workspace and the standard log
// path <workspace>/.state/logs/worker_<taskId>.log. rates prices a fallback
// cost estimate for ReadLog when the agent is killed before it ever emits a
// terminal Result event.
func New(t tasks.Task, workspace string, runner agent.BackgroundRunner, rates agent.Rates) *Worker {
	logPath := filepath.Join(workspace, ".state", "logs", fmt.Sprintf("worker_%s.log", t.ID))
	return &Worker{task: t, workspace: workspace, logPath: logPath, runner: runner, rates: rates}
}

// LogPath returns the worker's merged stdout+stderr log path.
func (w *Worker) LogPath() string { return w.logPath }

// Start launches the background agent invocation and returns the child PID.
func (w *Worker) Start() (int, error) {
	if err := os.MkdirAll(filepath.Dir(w.logPath), 0o755); err != nil {
		return 0, fmt.Errorf("creating log directory: %w", err)
	}

	prompt := prompts.WorkerTask(w.task)
	opts := agent.Options{AppendSystemPrompt: prompts.WorkerSystem(), Verbose: true}

	var handle *agent.ProcessHandle
	var err error
	if w.task.SessionID != "" {
		handle, err = w.runner.ResumeBackground(prompt, w.workspace, w.logPath, w.task.SessionID, opts)
	} else {
		handle, err = w.runner.StartBackground(prompt, w.workspace, w.logPath, opts)
	}
	if err != nil {
		return 0, fmt.Errorf("starting worker for task %s: %w", w.task.ID, err)
	}

	w.handle = handle
	w.startTime = time.Now()
	return handle.PID, nil
}

// IsAlive reports whether the child process is still running.
func (w *Worker) IsAlive() bool {
	if w.handle == nil {
		return false
	}
	return agent.IsAlive(w.handle.PID)
}

// ElapsedSeconds returns the whole seconds since Start.
func (w *Worker) ElapsedSeconds() int64 {
	if w.startTime.IsZero() {
		return 0
	}
	return int64(time.Since(w.startTime).Seconds())
}

// ReadNewEvents reads from the stored byte offset to end-of-file and
// returns freshly decoded events. Safe to call repeatedly: position only
// ever advances, so two calls with no intervening log growth return an
// empty second result.
func (w *Worker) ReadNewEvents() ([]agent.Event, error) {
	f, err := os.Open(w.logPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("opening worker log: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("statting worker log: %w", err)
	}
	if info.Size() <= w.readOffset {
		return nil, nil
	}

	if _, err := f.Seek(w.readOffset, 0); err != nil {
		return nil, fmt.Errorf("seeking worker log: %w", err)
	}

	events, newOffset, err := readEventsFrom(f, w.readOffset, w.runner)
	if err != nil {
		return nil, err
	}
	w.readOffset = newOffset
	return events, nil
}

// ReadLog does a full parse from offset 0 into a typed summary. Tolerates a
// live-growing file (a truncated final line is simply not yet decodable and
// is dropped, not an error).
func (w *Worker) ReadLog() (LogRead, error) {
	f, err := os.Open(w.logPath)
	if err != nil {
		if os.IsNotExist(err) {
			return LogRead{}, nil
		}
		return LogRead{}, fmt.Errorf("opening worker log: %w", err)
	}
	defer f.Close()

	events, _, err := readEventsFrom(f, 0, w.runner)
	if err != nil {
		return LogRead{}, err
	}

	out := LogRead{Events: events}
	var maxInputTokens, maxOutputTokens int
	for _, e := range events {
		switch e.Type {
		case agent.EventInit:
			out.SessionID = e.SessionID
		case agent.EventResult:
			out.Completed = true
			out.IsError = e.IsError
			out.ResultText = e.ResultText
			out.CostUSD = e.CostUSD
			if e.SessionID != "" {
				out.SessionID = e.SessionID
			}
		}
		if e.InputTokens > maxInputTokens {
			maxInputTokens = e.InputTokens
		}
		if e.OutputTokens > maxOutputTokens {
			maxOutputTokens = e.OutputTokens
		}
	}

	// A worker killed (or whose process died) before it ever emitted a
	// Result event has no authoritative cost; price it off the largest
	// token counts observed in the stream instead.
	if !out.Completed && len(events) > 0 {
		out.CostUSD = agent.EstimateCost(w.rates, maxInputTokens, maxOutputTokens)
		out.Estimated = true
	}
	return out, nil
}

// SessionID extracts the session id from the log so far, or "" if the
// agent has not yet emitted an init event.
func (w *Worker) SessionID() (string, error) {
	lr, err := w.ReadLog()
	if err != nil {
		return "", err
	}
	return lr.SessionID, nil
}

// Terminate sends SIGINT to the whole process group, waits up to the
// graceful-shutdown timeout, then SIGKILLs if the process is still alive.
func (w *Worker) Terminate() error {
	if w.handle == nil {
		return nil
	}
	if err := agent.InterruptGroup(w.handle.PID); err != nil {
		return fmt.Errorf("interrupting worker %s: %w", w.task.ID, err)
	}

	deadline := time.Now().Add(gracefulShutdownTimeout)
	for time.Now().Before(deadline) {
		if !w.IsAlive() {
			return nil
		}
		time.Sleep(100 * time.Millisecond)
	}

	if w.IsAlive() {
		if err := agent.KillGroup(w.handle.PID); err != nil {
			return fmt.Errorf("killing worker %s: %w", w.task.ID, err)
		}
	}
	return nil
}

// GracefulShutdown is the two-phase exit: interrupt the running process,
// extract its session id, then resume that session with a cleanup prompt
// asking it to kill side processes, remove temp files, and emit a fenced
// handover summary. Idempotent: a second call after completion returns the
// cached report.
func (w *Worker) GracefulShutdown(ctx context.Context, reason string) (CleanupReport, error) {
	if w.cleanupOnce != nil {
		return *w.cleanupOnce, nil
	}

	if err := w.Terminate(); err != nil {
		logger.Warn().Err(err).Str("task_id", w.task.ID).Msg("terminating worker before cleanup")
	}

	sessionID, err := w.SessionID()
	if err != nil {
		return CleanupReport{}, fmt.Errorf("extracting session id for cleanup: %w", err)
	}
	if sessionID == "" {
		report := CleanupReport{Success: false}
		w.cleanupOnce = &report
		return report, nil
	}

	cleanupLogPath := strings.TrimSuffix(w.logPath, ".log") + "_cleanup.log"
	handle, err := w.runner.ResumeBackground(prompts.Cleanup(reason), w.workspace, cleanupLogPath, sessionID, agent.Options{})
	if err != nil {
		return CleanupReport{}, fmt.Errorf("starting cleanup invocation: %w", err)
	}

	if err := waitForExit(ctx, handle.PID); err != nil {
		logger.Warn().Err(err).Str("task_id", w.task.ID).Msg("waiting for cleanup invocation")
	}

	report, err := parseCleanupLog(cleanupLogPath, w.runner, w.rates)
	if err != nil {
		return CleanupReport{}, fmt.Errorf("parsing cleanup log: %w", err)
	}
	w.cleanupOnce = &report
	return report, nil
}
