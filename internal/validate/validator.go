// Package validate implements the Validator role: invoked once per task
// immediately after the Worker exits cleanly, it drives a second agent
// invocation to verify and commit the working tree's diff.
package validate

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/ralphlabs/conductor/internal/agent"
	"github.com/ralphlabs/conductor/internal/prompts"
	"github.com/ralphlabs/conductor/internal/tasks"
	"github.com/ralphlabs/conductor/internal/vcsx"
)

// Report is the outcome of a Validator invocation.
type Report struct {
	Success        bool
	Message        string
	CostUSD        float64
	Estimated      bool
	RemainingDirty []string
}

// Validator drives the post-work verification/commit agent invocation.
type Validator struct {
	runner    agent.ForegroundRunner
	workspace string
	repo      *vcsx.Repo
}

// New returns a Validator bound to runner and workspace.
func New(runner agent.ForegroundRunner, workspace string) *Validator {
	return &Validator{runner: runner, workspace: workspace, repo: vcsx.Open(workspace)}
}

// Validate runs the mechanical pre-check, then the verify-and-commit agent
// invocation (retried once with a remaining-files hint), then a mechanical
// post-check. t.ValidationCommand, if set, is also required to pass —
// a supplemented feature beyond the original uncommitted-changes check.
func (v *Validator) Validate(ctx context.Context, t tasks.Task) (Report, error) {
	dirty, err := v.repo.HasUncommittedChanges(ctx)
	if err != nil {
		return Report{}, fmt.Errorf("checking uncommitted changes: %w", err)
	}
	if !dirty {
		if ok, msg := runValidationCommand(ctx, v.workspace, t.ValidationCommand); !ok {
			return Report{Success: false, Message: msg}, nil
		}
		return Report{Success: true, Message: "no uncommitted changes"}, nil
	}

	var totalCost float64
	var estimated bool

	res1, err := v.runForeground(ctx, prompts.Validator(""))
	if err != nil {
		return Report{}, err
	}
	totalCost += res1.CostUSD
	estimated = estimated || res1.Estimated

	dirty, err = v.repo.HasUncommittedChanges(ctx)
	if err != nil {
		return Report{}, fmt.Errorf("checking uncommitted changes: %w", err)
	}
	if !dirty {
		if ok, msg := runValidationCommand(ctx, v.workspace, t.ValidationCommand); !ok {
			return Report{Success: false, Message: msg, CostUSD: totalCost, Estimated: estimated}, nil
		}
		return Report{Success: true, Message: "verified and committed", CostUSD: totalCost, Estimated: estimated}, nil
	}

	remaining, err := v.repo.DirtyFiles(ctx)
	if err != nil {
		return Report{}, fmt.Errorf("listing dirty files: %w", err)
	}

	res2, err := v.runForeground(ctx, prompts.Validator(prompts.ValidatorRemainingFilesHint(remaining)))
	if err != nil {
		return Report{}, err
	}
	totalCost += res2.CostUSD
	estimated = estimated || res2.Estimated

	dirty, err = v.repo.HasUncommittedChanges(ctx)
	if err != nil {
		return Report{}, fmt.Errorf("checking uncommitted changes: %w", err)
	}
	if dirty {
		remaining, _ = v.repo.DirtyFiles(ctx)
		return Report{
			Success:        false,
			Message:        "working tree still dirty after two validation attempts",
			CostUSD:        totalCost,
			Estimated:      estimated,
			RemainingDirty: remaining,
		}, nil
	}

	if ok, msg := runValidationCommand(ctx, v.workspace, t.ValidationCommand); !ok {
		return Report{Success: false, Message: msg, CostUSD: totalCost, Estimated: estimated}, nil
	}
	return Report{Success: true, Message: "verified and committed on retry", CostUSD: totalCost, Estimated: estimated}, nil
}

func (v *Validator) runForeground(ctx context.Context, prompt string) (agent.Result, error) {
	return v.runner.RunForeground(ctx, prompt, v.workspace, agent.Options{}, agent.Callbacks{}, nil)
}

// runValidationCommand runs t.ValidationCommand if non-empty, returning
// (true, "") when the command is empty or exits zero, and false with a
// message describing the failure when it cannot run or exits non-zero.
func runValidationCommand(ctx context.Context, workspace, command string) (bool, string) {
	if command == "" {
		return true, ""
	}
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return true, ""
	}

	start := time.Now()
	cmd := exec.CommandContext(ctx, fields[0], fields[1:]...)
	cmd.Dir = workspace
	out, err := cmd.CombinedOutput()
	if err != nil {
		return false, fmt.Sprintf("validation command %q failed after %s: %s", command, time.Since(start), string(out))
	}
	return true, ""
}
