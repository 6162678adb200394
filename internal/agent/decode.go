package agent

import (
	"encoding/json"
	"strconv"
	"strings"
)

// claudeLine is the wire shape of one NDJSON line from
// `claude -p --output-format stream-json`. Only Claude's event stream is
// decoded with full fidelity; see BackendCommands.
type claudeLine struct {
	Type    string `json:"type"`
	Subtype string `json:"subtype,omitempty"`

	// type == "system", subtype == "init"
	SessionID string `json:"session_id,omitempty"`
	Model     string `json:"model,omitempty"`

	// type == "assistant"
	Message *claudeMessage `json:"message,omitempty"`

	// type == "result"
	Result     string `json:"result,omitempty"`
	IsError    bool   `json:"is_error,omitempty"`
	DurationMs int64  `json:"duration_ms,omitempty"`
	TotalCost  float64 `json:"total_cost_usd,omitempty"`
	ResultUsage *claudeUsage `json:"usage,omitempty"`
}

type claudeMessage struct {
	Content []claudeBlock `json:"content"`
	Usage   *claudeUsage  `json:"usage,omitempty"`
}

type claudeBlock struct {
	Type  string          `json:"type"`
	Text  string          `json:"text,omitempty"`
	Name  string          `json:"name,omitempty"`
	Input json.RawMessage `json:"input,omitempty"`
}

type claudeUsage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}

// decodeLine parses one line of NDJSON agent output into zero or one Event.
// Malformed lines and lines with no meaningful payload decode to ok=false;
// the caller drops them silently, per the stream's "lazy, finite, possibly
// truncated" contract.
func decodeLine(backend Backend, line string) (Event, bool) {
	line = strings.TrimSpace(line)
	if line == "" {
		return Event{}, false
	}

	if backend != BackendClaude {
		return decodeGenericLine(line)
	}

	var msg claudeLine
	if err := json.Unmarshal([]byte(line), &msg); err != nil {
		return Event{}, false
	}

	switch msg.Type {
	case "system":
		if msg.Subtype != "init" || msg.SessionID == "" {
			return Event{}, false
		}
		return Event{Type: EventInit, SessionID: msg.SessionID, Model: msg.Model}, true

	case "assistant":
		if msg.Message == nil {
			return Event{}, false
		}
		var textParts []string
		var toolName, toolSummary string
		for _, b := range msg.Message.Content {
			switch b.Type {
			case "text":
				if b.Text != "" {
					textParts = append(textParts, b.Text)
				}
			case "tool_use":
				toolName = b.Name
				toolSummary = summarizeInput(b.Input)
			}
		}
		var in, out int
		if msg.Message.Usage != nil {
			in, out = msg.Message.Usage.InputTokens, msg.Message.Usage.OutputTokens
		}
		if toolName != "" {
			return Event{Type: EventToolUse, ToolName: toolName, ToolInputSummary: toolSummary, InputTokens: in, OutputTokens: out}, true
		}
		if len(textParts) == 0 {
			return Event{}, false
		}
		return Event{Type: EventAssistantText, Text: strings.Join(textParts, ""), InputTokens: in, OutputTokens: out}, true

	case "result":
		in, out := 0, 0
		if msg.ResultUsage != nil {
			in, out = msg.ResultUsage.InputTokens, msg.ResultUsage.OutputTokens
		}
		return Event{
			Type:         EventResult,
			ResultText:   msg.Result,
			CostUSD:      msg.TotalCost,
			IsError:      msg.IsError || msg.Subtype != "success",
			DurationMs:   msg.DurationMs,
			InputTokens:  in,
			OutputTokens: out,
		}, true

	default:
		return Event{}, false
	}
}

// summarizeInput renders a tool's input arguments as a short one-line
// summary for display and loop-detection, not as a faithful re-encoding.
func summarizeInput(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var m map[string]json.RawMessage
	if err := json.Unmarshal(raw, &m); err != nil {
		s := string(raw)
		if len(s) > 80 {
			s = s[:80] + "..."
		}
		return s
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	s := strconv.Itoa(len(keys)) + " field(s)"
	if v, ok := m["file_path"]; ok {
		s = "file_path=" + string(v)
	} else if v, ok := m["command"]; ok {
		s = "command=" + string(v)
	} else if v, ok := m["path"]; ok {
		s = "path=" + string(v)
	}
	if len(s) > 100 {
		s = s[:100] + "..."
	}
	return s
}

// decodeGenericLine handles backends whose stream shape is not part of the
// documented event protocol: only plain assistant text is recovered.
func decodeGenericLine(line string) (Event, bool) {
	text := parseGenericStreamLine(line)
	if text == "" {
		return Event{}, false
	}
	return Event{Type: EventAssistantText, Text: text}, true
}

// genericStreamMsg covers the cursor/opencode/kilo/codex/pi NDJSON shapes.
type genericStreamMsg struct {
	Type    string `json:"type"`
	Subtype string `json:"subtype,omitempty"`

	Message *struct {
		Content []struct {
			Type string `json:"type"`
			Text string `json:"text,omitempty"`
		} `json:"content"`
	} `json:"message,omitempty"`

	Result string `json:"result,omitempty"`

	Part *struct {
		Text string `json:"text"`
	} `json:"part,omitempty"`

	AssistantMessageEvent *struct {
		Type  string `json:"type"`
		Delta string `json:"delta,omitempty"`
	} `json:"assistantMessageEvent,omitempty"`
}

func parseGenericStreamLine(line string) string {
	var msg genericStreamMsg
	if err := json.Unmarshal([]byte(line), &msg); err != nil {
		return line
	}

	switch msg.Type {
	case "assistant":
		if msg.Message == nil {
			return ""
		}
		var parts []string
		for _, block := range msg.Message.Content {
			if block.Type == "text" && block.Text != "" {
				parts = append(parts, block.Text)
			}
		}
		return strings.Join(parts, "")
	case "result":
		if msg.Subtype == "success" {
			return msg.Result
		}
		return ""
	case "text":
		if msg.Part != nil {
			return msg.Part.Text
		}
		return ""
	case "message_update":
		if msg.AssistantMessageEvent != nil && msg.AssistantMessageEvent.Type == "text_delta" {
			return msg.AssistantMessageEvent.Delta
		}
		return ""
	case "step_finish":
		return ""
	default:
		return line
	}
}
