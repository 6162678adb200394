// Package supervisor implements the pure-observer role: periodically
// inspects a running Worker and returns a Decision, without ever mutating
// task state itself.
package supervisor

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ralphlabs/conductor/internal/agent"
	"github.com/ralphlabs/conductor/internal/prompts"
	"github.com/ralphlabs/conductor/internal/tasks"
)

// Decision is the Supervisor's verdict.
type Decision struct {
	Action    string // "continue" | "orchestrate"
	Reason    string
	CostUSD   float64
	Estimated bool
}

const (
	ActionContinue    = "continue"
	ActionOrchestrate = "orchestrate"
)

// Supervisor runs foreground agent invocations to analyze a Worker in
// flight. A single instance is reused across checks for one task; Cancel
// targets whichever check is currently in progress.
type Supervisor struct {
	runner agent.ForegroundRunner
	cancel *agent.CancelToken
}

// New returns a Supervisor bound to runner.
func New(runner agent.ForegroundRunner) *Supervisor {
	return &Supervisor{runner: runner}
}

// Cancel requests cancellation of the in-flight Check, if any. Used when
// the Worker exits while a check is running.
func (s *Supervisor) Cancel() {
	if s.cancel != nil {
		s.cancel.Cancel()
	}
}

// Check emits an oversight prompt naming the task, elapsed time, and the
// worker log path, then runs the Agent Runner in foreground mode and
// parses the first well-formed JSON decision object in the response. A
// cancelled or unparseable response defaults to continue — analysis never
// escalates on its own failure.
func (s *Supervisor) Check(ctx context.Context, t tasks.Task, checkOrdinal int, elapsedSeconds int64, logPath string) Decision {
	s.cancel = &agent.CancelToken{}

	prompt := prompts.Supervisor(t, checkOrdinal, elapsedSeconds, logPath)

	var responseText strings.Builder
	cb := agent.Callbacks{
		OnAssistantText: func(text string) { responseText.WriteString(text) },
	}

	result, err := s.runner.RunForeground(ctx, prompt, "", agent.Options{}, cb, s.cancel)
	if s.cancel.Cancelled() {
		return Decision{Action: ActionContinue, Reason: "analysis cancelled"}
	}
	if err != nil {
		return Decision{Action: ActionContinue, Reason: fmt.Sprintf("analysis error: %v", err)}
	}

	text := responseText.String()
	if result.ResultText != "" {
		text += result.ResultText
	}

	decision, ok := parseDecision(text)
	if !ok {
		decision = Decision{Action: ActionContinue, Reason: "no parseable decision, defaulting to continue"}
	}
	decision.CostUSD = result.CostUSD
	decision.Estimated = result.Estimated
	return decision
}

type decisionJSON struct {
	Decision string `json:"decision"`
	Reason   string `json:"reason"`
}

// parseDecision scans text for the first well-formed JSON object
// containing a "decision" field and returns it. Any non-{"continue",
// "orchestrate"} value, or no object found at all, is reported as not ok.
func parseDecision(text string) (Decision, bool) {
	for {
		start := strings.IndexByte(text, '{')
		if start < 0 {
			return Decision{}, false
		}
		candidate := text[start:]

		var d decisionJSON
		dec := json.NewDecoder(strings.NewReader(candidate))
		if err := dec.Decode(&d); err != nil || (d.Decision != ActionContinue && d.Decision != ActionOrchestrate) {
			text = candidate[1:]
			continue
		}
		return Decision{Action: d.Decision, Reason: d.Reason}, true
	}
}
