package agent

// StartBackground launches the backend detached in its own process group,
// redirecting merged stdout+stderr to logPath, and returns immediately.
func (r *Runner) StartBackground(prompt, workspace, logPath string, opts Options) (*ProcessHandle, error) {
	return startBackground(r.Backend, prompt, workspace, logPath, r.applyDefaults(opts))
}

// ResumeBackground is StartBackground with a resume session id attached.
func (r *Runner) ResumeBackground(prompt, workspace, logPath, sessionID string, opts Options) (*ProcessHandle, error) {
	return resumeBackground(r.Backend, prompt, workspace, logPath, sessionID, r.applyDefaults(opts))
}

// DecodeLine exposes the backend-specific line decoder so callers that read
// a growing log file out-of-process (Worker.readNewEvents) can reuse the
// exact same decoding rules as RunForeground.
func (r *Runner) DecodeLine(line string) (Event, bool) {
	return decodeLine(r.Backend, line)
}
