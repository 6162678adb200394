// Package agent is the Agent Runner: a thin, uniform façade over the
// external coding-agent CLI, with three entry points (runForeground,
// startBackground, resumeBackground) sharing one event protocol and one
// backend registry.
package agent

// EventType discriminates the variants of AgentEvent.
type EventType string

const (
	EventInit          EventType = "init"
	EventAssistantText EventType = "assistant_text"
	EventToolUse       EventType = "tool_use"
	EventResult        EventType = "result"
)

// Event is a single decoded line from the agent's streaming protocol. Only
// the fields relevant to Type are populated.
type Event struct {
	Type EventType

	// Init
	SessionID string
	Model     string

	// AssistantText
	Text string

	// ToolUse
	ToolName        string
	ToolInputSummary string

	// Result
	ResultText string
	CostUSD    float64
	IsError    bool
	DurationMs int64

	// Usage, when present on an assistant event, feeds the cost-estimation
	// fallback when no terminal Result event is ever observed.
	InputTokens  int
	OutputTokens int
}

// Options are recognized by all three Agent Runner entry points.
type Options struct {
	// ResumeSessionID attaches the invocation to an existing agent session.
	ResumeSessionID string

	// AppendSystemPrompt, when non-empty, is passed as
	// --append-system-prompt on the command line of every backend.
	AppendSystemPrompt string

	// Verbose is not read when the command line is built; the Claude
	// backend's base arguments already include --verbose.
	Verbose bool

	// Model selects a model on backends in BackendsSupportingModel. Ignored
	// otherwise.
	Model string

	// Binary overrides the executable name used to invoke the backend,
	// leaving the rest of its CommandConfig (flags, env, resume behavior)
	// unchanged.
	Binary string
}

// Result is the aggregated outcome of a runForeground invocation: the
// terminal state after the whole event stream has been consumed.
type Result struct {
	SessionID  string
	ResultText string
	CostUSD    float64
	IsError    bool
	DurationMs int64
	Estimated  bool
}

// Callbacks receives events from runForeground in arrival order. Any nil
// field is simply not invoked for that event type.
type Callbacks struct {
	OnInit          func(sessionID, model string)
	OnAssistantText func(text string)
	OnToolUse       func(name, inputSummary string)
	OnResult        func(Event)
}

func (c Callbacks) dispatch(e Event) {
	switch e.Type {
	case EventInit:
		if c.OnInit != nil {
			c.OnInit(e.SessionID, e.Model)
		}
	case EventAssistantText:
		if c.OnAssistantText != nil {
			c.OnAssistantText(e.Text)
		}
	case EventToolUse:
		if c.OnToolUse != nil {
			c.OnToolUse(e.ToolName, e.ToolInputSummary)
		}
	case EventResult:
		if c.OnResult != nil {
			c.OnResult(e)
		}
	}
}
