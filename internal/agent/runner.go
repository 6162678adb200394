package agent

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os/exec"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/ralphlabs/conductor/internal/logger"
)

// CancelToken is a cooperative cancellation flag, polled by RunForeground
// between events. Safe for concurrent use; Cancel may be called from any
// goroutine.
type CancelToken struct {
	flag atomic.Bool
}

// Cancel requests cancellation. Idempotent.
func (t *CancelToken) Cancel() { t.flag.Store(true) }

// Cancelled reports whether Cancel has been called.
func (t *CancelToken) Cancelled() bool { return t.flag.Load() }

// Runner is the Agent Runner façade for a single backend. It is stateless
// beyond its backend/rate selection and safe for concurrent use: every
// method starts a fresh subprocess.
type Runner struct {
	Backend Backend
	Rates   Rates

	// Model and Binary, when set, are applied to every invocation that does
	// not already specify its own Options.Model/Options.Binary.
	Model  string
	Binary string
}

// NewRunner returns a Runner for the given backend, falling back to Claude
// for an unrecognized value.
func NewRunner(backend Backend, rates Rates) *Runner {
	if _, ok := BackendCommands[backend]; !ok {
		backend = BackendClaude
	}
	return &Runner{Backend: backend, Rates: rates}
}

// WithModel sets the default model passed to every invocation.
func (r *Runner) WithModel(model string) *Runner {
	r.Model = model
	return r
}

// WithBinary sets the default executable override passed to every
// invocation.
func (r *Runner) WithBinary(binary string) *Runner {
	r.Binary = binary
	return r
}

// applyDefaults fills opts.Model/opts.Binary from the Runner's own defaults
// when the caller left them unset.
func (r *Runner) applyDefaults(opts Options) Options {
	if opts.Model == "" {
		opts.Model = r.Model
	}
	if opts.Binary == "" {
		opts.Binary = r.Binary
	}
	return opts
}

// RunForeground runs the agent synchronously from the caller's perspective,
// streaming decoded events through cb in arrival order, and returns the
// aggregated terminal Result. workspace is the process's working directory.
// cancel may be nil, in which case the invocation is not cancellable.
func (r *Runner) RunForeground(ctx context.Context, prompt, workspace string, opts Options, cb Callbacks, cancel *CancelToken) (Result, error) {
	cfg, ok := BackendCommands[r.Backend]
	if !ok {
		return Result{}, fmt.Errorf("unknown agent backend %q", r.Backend)
	}
	opts = r.applyDefaults(opts)

	start := time.Now()
	cmd := exec.CommandContext(ctx, commandName(cfg, opts), buildArgs(cfg, prompt, opts)...)
	cmd.Dir = workspace
	cmd.Env = buildEnv(cfg.Env)
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return Result{}, fmt.Errorf("creating stdout pipe: %w", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return Result{}, fmt.Errorf("creating stderr pipe: %w", err)
	}

	if err := cmd.Start(); err != nil {
		return Result{}, fmt.Errorf("starting agent process: %w", err)
	}

	lines := make(chan string, 64)
	var wg sync.WaitGroup
	wg.Add(2)
	go scanInto(stdout, &wg, lines)
	go scanInto(stderr, &wg, lines)
	go func() {
		wg.Wait()
		close(lines)
	}()

	var agg aggregator
	cancelled := false

	for line := range lines {
		if cancel != nil && cancel.Cancelled() && !cancelled {
			cancelled = true
			if err := terminateGroup(ctx, cmd.Process.Pid); err != nil {
				logger.Warn().Err(err).Msg("cancelling agent invocation")
			}
		}
		ev, ok := decodeLine(r.Backend, line)
		if !ok {
			continue
		}
		agg.observe(ev)
		cb.dispatch(ev)
	}

	waitErr := cmd.Wait()
	duration := time.Since(start)

	result := agg.finalize(r.Rates, duration)
	switch {
	case cancelled:
		result.IsError = false // cooperative cancellation is not itself a failure
	case waitErr != nil && !agg.sawResult:
		result.IsError = true
	}
	return result, nil
}

func scanInto(r io.Reader, wg *sync.WaitGroup, out chan<- string) {
	defer wg.Done()
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		out <- sc.Text()
	}
}

// aggregator accumulates stream state across a RunForeground invocation.
type aggregator struct {
	sessionID       string
	lastAssistant   string
	sawResult       bool
	resultText      string
	resultCost      float64
	resultIsError   bool
	resultDuration  int64
	maxInputTokens  int
	maxOutputTokens int
}

func (a *aggregator) observe(e Event) {
	switch e.Type {
	case EventInit:
		a.sessionID = e.SessionID
	case EventAssistantText:
		a.lastAssistant = e.Text
	case EventResult:
		a.sawResult = true
		a.resultText = e.ResultText
		a.resultCost = e.CostUSD
		a.resultIsError = e.IsError
		a.resultDuration = e.DurationMs
		if e.SessionID != "" {
			a.sessionID = e.SessionID
		}
	}
	if e.InputTokens > a.maxInputTokens {
		a.maxInputTokens = e.InputTokens
	}
	if e.OutputTokens > a.maxOutputTokens {
		a.maxOutputTokens = e.OutputTokens
	}
}

func (a *aggregator) finalize(rates Rates, elapsed time.Duration) Result {
	if a.sawResult {
		return Result{
			SessionID:  a.sessionID,
			ResultText: a.resultText,
			CostUSD:    a.resultCost,
			IsError:    a.resultIsError,
			DurationMs: a.resultDuration,
		}
	}
	return Result{
		SessionID:  a.sessionID,
		ResultText: a.lastAssistant,
		CostUSD:    EstimateCost(rates, a.maxInputTokens, a.maxOutputTokens),
		IsError:    true,
		DurationMs: elapsed.Milliseconds(),
		Estimated:  true,
	}
}
