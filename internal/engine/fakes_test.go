package engine

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/ralphlabs/conductor/internal/agent"
)

// fakeForegroundRunner returns a scripted ResultText/cost for every
// foreground invocation (Supervisor checks, Validator, Orchestrator steps),
// regardless of the prompt. Tests configure response via a closure so the
// same fake can serve different roles with different scripted output.
type fakeForegroundRunner struct {
	respond func(prompt string) (text string, cost float64)
}

func (f *fakeForegroundRunner) RunForeground(_ context.Context, prompt, _ string, _ agent.Options, cb agent.Callbacks, _ *agent.CancelToken) (agent.Result, error) {
	text, cost := f.respond(prompt)
	if cb.OnAssistantText != nil {
		cb.OnAssistantText(text)
	}
	return agent.Result{ResultText: text, CostUSD: cost}, nil
}

// fakeBackgroundRunner's StartBackground/ResumeBackground write a canned log
// directly to logPath and launch a real, already-finished child process so
// agent.IsAlive(handle.PID) observes it as dead on the very next poll —
// exercising the engine's real process-liveness path without depending on
// an actual coding-agent CLI being installed.
type fakeBackgroundRunner struct {
	logContent string
}

func (f *fakeBackgroundRunner) StartBackground(_, _, logPath string, _ agent.Options) (*agent.ProcessHandle, error) {
	return f.writeAndSpawn(logPath)
}

func (f *fakeBackgroundRunner) ResumeBackground(_, _, logPath, _ string, _ agent.Options) (*agent.ProcessHandle, error) {
	return f.writeAndSpawn(logPath)
}

func (f *fakeBackgroundRunner) DecodeLine(line string) (agent.Event, bool) {
	r := agent.NewRunner(agent.BackendClaude, agent.Rates{})
	return r.DecodeLine(line)
}

func (f *fakeBackgroundRunner) writeAndSpawn(logPath string) (*agent.ProcessHandle, error) {
	if err := os.MkdirAll(filepath.Dir(logPath), 0o755); err != nil {
		return nil, err
	}
	if err := os.WriteFile(logPath, []byte(f.logContent), 0o644); err != nil {
		return nil, err
	}

	cmd := exec.Command("sh", "-c", "exit 0")
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("spawning sentinel process: %w", err)
	}
	pid := cmd.Process.Pid
	go cmd.Wait()

	return &agent.ProcessHandle{PID: pid, LogPath: logPath}, nil
}
