package agent

// Backend identifies a supported coding-agent CLI.
type Backend string

const (
	BackendClaude   Backend = "claude"
	BackendCursor   Backend = "cursor"
	BackendCodex    Backend = "codex"
	BackendOpencode Backend = "opencode"
	BackendKilo     Backend = "kilo"
	BackendPi       Backend = "pi"
)

// ValidBackends is the ordered list of all registered backends.
var ValidBackends = []Backend{
	BackendClaude,
	BackendCursor,
	BackendCodex,
	BackendOpencode,
	BackendKilo,
	BackendPi,
}

// BackendsSupportingModel is the subset of backends that accept a --model
// flag.
var BackendsSupportingModel = []Backend{BackendOpencode, BackendKilo, BackendPi}

// CommandConfig holds the base argv and extra environment variables needed
// to invoke a backend in streaming-JSON mode.
type CommandConfig struct {
	// Command is the base argv slice, not including the prompt or any
	// resume/model flags — those are appended by the caller.
	Command []string
	// Env contains extra environment variables merged into the child's
	// environment.
	Env map[string]string
	// ResumeFlag, if non-empty, is the flag name used to resume a prior
	// session (followed by the session id as the next argv entry). Backends
	// that cannot resume leave this empty.
	ResumeFlag string
	// SupportsModel reports whether --model is accepted.
	SupportsModel bool
}

// BackendCommands maps each Backend to its command configuration. Only
// BackendClaude's event stream is fully decoded into typed Init/ToolUse/
// Result events (see decode.go); the other five are registered so the
// backend registry and NewRunner factory stay multi-adapter, but their
// output is decoded with reduced fidelity (assistant text only, no typed
// cost/session fields) since their JSON stream shapes are not part of this
// system's documented event protocol.
var BackendCommands = map[Backend]CommandConfig{
	BackendClaude: {
		Command: []string{
			"claude", "-p",
			"--dangerously-skip-permissions",
			"--output-format", "stream-json",
			"--verbose",
		},
		ResumeFlag: "--resume",
	},
	BackendCursor: {
		Command: []string{
			"agent", "-p", "--force",
			"--output-format", "stream-json",
			"--stream-partial-output",
		},
	},
	BackendCodex: {
		Command: []string{"codex", "exec", "--full-auto", "--json"},
	},
	BackendOpencode: {
		Command:       []string{"opencode", "run", "--format", "json"},
		Env:           map[string]string{"OPENCODE_PERMISSION": `{"*":"allow"}`},
		SupportsModel: true,
	},
	BackendKilo: {
		Command:       []string{"kilo", "run", "--format", "json"},
		Env:           map[string]string{"KILO_PERMISSION": `{"*":"allow"}`},
		SupportsModel: true,
	},
	BackendPi: {
		Command:       []string{"pi", "--mode", "json", "-p"},
		SupportsModel: true,
	},
}
