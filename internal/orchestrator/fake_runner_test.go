package orchestrator

import (
	"context"

	"github.com/ralphlabs/conductor/internal/agent"
)

// fakeRunner is a scripted ForegroundRunner: each call returns the next
// entry in responses, cycling on the last entry if calls exceed its length.
type fakeRunner struct {
	responses []string
	calls     int
}

func (f *fakeRunner) RunForeground(_ context.Context, _, _ string, _ agent.Options, cb agent.Callbacks, _ *agent.CancelToken) (agent.Result, error) {
	idx := f.calls
	if idx >= len(f.responses) {
		idx = len(f.responses) - 1
	}
	f.calls++
	text := f.responses[idx]
	if cb.OnAssistantText != nil {
		cb.OnAssistantText(text)
	}
	return agent.Result{ResultText: "", CostUSD: 0.01}, nil
}
