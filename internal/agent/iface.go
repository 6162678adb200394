package agent

import "context"

// ForegroundRunner is the subset of Runner that Supervisor, Validator, and
// Orchestrator depend on. Defined as an interface so those components can
// be tested against a fake without spawning a real subprocess.
type ForegroundRunner interface {
	RunForeground(ctx context.Context, prompt, workspace string, opts Options, cb Callbacks, cancel *CancelToken) (Result, error)
}

// BackgroundRunner is the subset of Runner that Worker depends on.
type BackgroundRunner interface {
	StartBackground(prompt, workspace, logPath string, opts Options) (*ProcessHandle, error)
	ResumeBackground(prompt, workspace, logPath, sessionID string, opts Options) (*ProcessHandle, error)
	DecodeLine(line string) (Event, bool)
}

var (
	_ ForegroundRunner = (*Runner)(nil)
	_ BackgroundRunner = (*Runner)(nil)
)
