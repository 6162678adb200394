// Package orchestrator implements the Orchestrator role: invoked when the
// task list needs to be rewritten, it drives one foreground agent
// invocation through snapshot -> orchestrate -> review -> validate ->
// commit, restoring the pre-invocation snapshot byte-for-byte on any
// failure path.
package orchestrator

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/ralphlabs/conductor/internal/agent"
	"github.com/ralphlabs/conductor/internal/prompts"
	"github.com/ralphlabs/conductor/internal/vcsx"
)

const (
	tasksFileName       = "tasks.json"
	orchestrationToken  = "ORCHESTRATION_DONE"
	reviewToken         = "REVIEW_PASSED"
	orchestrateAttempts = 3
	reviewAttempts      = 3
)

// Report is the outcome of an Orchestrator invocation.
type Report struct {
	Success   bool
	Message   string
	CostUSD   float64
	Estimated bool
}

// Orchestrator drives the task-list rewrite protocol.
type Orchestrator struct {
	runner    agent.ForegroundRunner
	workspace string
	repo      *vcsx.Repo

	orchestrateAttempts int
	reviewAttempts      int
}

// New returns an Orchestrator bound to runner and workspace, with the
// default attempt caps (3 and 3). Use WithAttempts to override them from
// configuration.
func New(runner agent.ForegroundRunner, workspace string) *Orchestrator {
	return &Orchestrator{
		runner:              runner,
		workspace:           workspace,
		repo:                vcsx.Open(workspace),
		orchestrateAttempts: orchestrateAttempts,
		reviewAttempts:      reviewAttempts,
	}
}

// WithAttempts overrides the orchestrate/review retry caps.
func (o *Orchestrator) WithAttempts(orchestrate, review int) *Orchestrator {
	if orchestrate > 0 {
		o.orchestrateAttempts = orchestrate
	}
	if review > 0 {
		o.reviewAttempts = review
	}
	return o
}

// Run executes the full protocol for the given trigger reason and extra
// context. On any failure, tasks.json on disk is restored to its exact
// pre-invocation byte contents.
func (o *Orchestrator) Run(ctx context.Context, reason, extraContext string) (Report, error) {
	path := o.tasksPath()
	snapshot, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return Report{}, fmt.Errorf("snapshotting tasks file: %w", err)
	}

	var totalCost float64
	var estimated bool

	restore := func() error {
		if snapshot == nil {
			return os.Remove(path)
		}
		return os.WriteFile(path, snapshot, 0o644)
	}

	// Step 2: orchestrate.
	cost, estAttempt, err := o.runUntilToken(ctx, prompts.Orchestrate(reason, extraContext), prompts.OrchestrateRetryHint(), orchestrationToken, o.orchestrateAttempts)
	totalCost += cost
	estimated = estimated || estAttempt
	if err != nil {
		if rerr := restore(); rerr != nil {
			return Report{}, fmt.Errorf("restoring snapshot after orchestrate failure: %w", rerr)
		}
		return Report{Success: false, Message: "orchestration failed: " + err.Error(), CostUSD: totalCost, Estimated: estimated}, nil
	}

	// Step 3: review.
	cost, estAttempt, err = o.runUntilToken(ctx, prompts.Review(), prompts.ReviewRetryHint(), reviewToken, o.reviewAttempts)
	totalCost += cost
	estimated = estimated || estAttempt
	if err != nil {
		if rerr := restore(); rerr != nil {
			return Report{}, fmt.Errorf("restoring snapshot after review failure: %w", rerr)
		}
		return Report{Success: false, Message: "orchestration failed: review", CostUSD: totalCost, Estimated: estimated}, nil
	}

	// Step 4: mechanical validation.
	if err := o.validateTasksFile(path); err != nil {
		if rerr := restore(); rerr != nil {
			return Report{}, fmt.Errorf("restoring snapshot after validation failure: %w", rerr)
		}
		return Report{Success: false, Message: "task list validation failed: " + err.Error(), CostUSD: totalCost, Estimated: estimated}, nil
	}

	// Step 5: commit, only if the file actually changed.
	current, err := os.ReadFile(path)
	if err != nil {
		return Report{}, fmt.Errorf("reading final tasks file: %w", err)
	}
	if !bytes.Equal(snapshot, current) {
		msg := commitMessage(reason)
		if err := o.repo.CommitFile(ctx, tasksFileName, msg); err != nil {
			return Report{}, fmt.Errorf("committing tasks file: %w", err)
		}
	}

	return Report{Success: true, Message: "task list updated", CostUSD: totalCost, Estimated: estimated}, nil
}

func (o *Orchestrator) tasksPath() string {
	return o.workspace + string(os.PathSeparator) + tasksFileName
}

// runUntilToken runs up to maxAttempts foreground invocations of prompt
// (appending hint after the first attempt), stopping as soon as the
// response contains token. Returns the total cost across attempts, whether
// any attempt's cost was estimated rather than authoritative, and a
// non-nil error if no attempt produced the token.
func (o *Orchestrator) runUntilToken(ctx context.Context, prompt, hint, token string, maxAttempts int) (float64, bool, error) {
	var totalCost float64
	var estimated bool
	current := prompt

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		var out strings.Builder
		cb := agent.Callbacks{OnAssistantText: func(text string) { out.WriteString(text) }}

		res, err := o.runner.RunForeground(ctx, current, o.workspace, agent.Options{}, cb, nil)
		if err != nil {
			return totalCost, estimated, fmt.Errorf("agent invocation failed: %w", err)
		}
		totalCost += res.CostUSD
		estimated = estimated || res.Estimated

		combined := out.String() + res.ResultText
		if strings.Contains(combined, token) {
			return totalCost, estimated, nil
		}
		current = prompt + "\n\n" + hint
	}

	return totalCost, estimated, fmt.Errorf("token %q not observed after %d attempts", token, maxAttempts)
}

// validateTasksFile mechanically parses path as a JSON array, requiring a
// unique, non-empty id and description on every entry.
func (o *Orchestrator) validateTasksFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading tasks file: %w", err)
	}

	var entries []struct {
		ID          string `json:"id"`
		Description string `json:"description"`
	}
	if err := json.Unmarshal(data, &entries); err != nil {
		return fmt.Errorf("parsing tasks file as a JSON array: %w", err)
	}

	seen := make(map[string]struct{}, len(entries))
	for _, e := range entries {
		if e.ID == "" {
			return fmt.Errorf("entry with empty id")
		}
		if e.Description == "" {
			return fmt.Errorf("entry %q has empty description", e.ID)
		}
		if _, dup := seen[e.ID]; dup {
			return fmt.Errorf("duplicate id %q", e.ID)
		}
		seen[e.ID] = struct{}{}
	}
	return nil
}

func commitMessage(reason string) string {
	return fmt.Sprintf("tasks: orchestrate (%s)", reason)
}
