package agent

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeLine_ClaudeInit(t *testing.T) {
	line := `{"type":"system","subtype":"init","session_id":"sess-1","model":"claude-opus-4"}`
	ev, ok := decodeLine(BackendClaude, line)
	require.True(t, ok)
	assert.Equal(t, EventInit, ev.Type)
	assert.Equal(t, "sess-1", ev.SessionID)
	assert.Equal(t, "claude-opus-4", ev.Model)
}

func TestDecodeLine_ClaudeAssistantText(t *testing.T) {
	line := `{"type":"assistant","message":{"content":[{"type":"text","text":"hello"}],"usage":{"input_tokens":10,"output_tokens":5}}}`
	ev, ok := decodeLine(BackendClaude, line)
	require.True(t, ok)
	assert.Equal(t, EventAssistantText, ev.Type)
	assert.Equal(t, "hello", ev.Text)
	assert.Equal(t, 10, ev.InputTokens)
	assert.Equal(t, 5, ev.OutputTokens)
}

func TestDecodeLine_ClaudeToolUse(t *testing.T) {
	line := `{"type":"assistant","message":{"content":[{"type":"tool_use","name":"Edit","input":{"file_path":"a.go"}}]}}`
	ev, ok := decodeLine(BackendClaude, line)
	require.True(t, ok)
	assert.Equal(t, EventToolUse, ev.Type)
	assert.Equal(t, "Edit", ev.ToolName)
	assert.Contains(t, ev.ToolInputSummary, "a.go")
}

func TestDecodeLine_ClaudeResult(t *testing.T) {
	line := `{"type":"result","subtype":"success","result":"TASK_COMPLETED","total_cost_usd":0.42,"duration_ms":1500,"usage":{"input_tokens":100,"output_tokens":50}}`
	ev, ok := decodeLine(BackendClaude, line)
	require.True(t, ok)
	assert.Equal(t, EventResult, ev.Type)
	assert.Equal(t, "TASK_COMPLETED", ev.ResultText)
	assert.Equal(t, 0.42, ev.CostUSD)
	assert.False(t, ev.IsError)
	assert.Equal(t, int64(1500), ev.DurationMs)
}

func TestDecodeLine_ClaudeResultErrorSubtype(t *testing.T) {
	line := `{"type":"result","subtype":"error_max_turns","result":""}`
	ev, ok := decodeLine(BackendClaude, line)
	require.True(t, ok)
	assert.True(t, ev.IsError)
}

func TestDecodeLine_MalformedLineDropped(t *testing.T) {
	_, ok := decodeLine(BackendClaude, `not json at all {{{`)
	assert.False(t, ok)
}

func TestDecodeLine_BlankLineDropped(t *testing.T) {
	_, ok := decodeLine(BackendClaude, "   ")
	assert.False(t, ok)
}

func TestDecodeLine_ClaudeUnknownType(t *testing.T) {
	_, ok := decodeLine(BackendClaude, `{"type":"progress"}`)
	assert.False(t, ok)
}

func TestDecodeLine_GenericBackendAssistant(t *testing.T) {
	line := `{"type":"assistant","message":{"content":[{"type":"text","text":"working"}]}}`
	ev, ok := decodeLine(BackendOpencode, line)
	require.True(t, ok)
	assert.Equal(t, EventAssistantText, ev.Type)
	assert.Equal(t, "working", ev.Text)
}

func TestDecodeLine_GenericBackendPlainTextFallback(t *testing.T) {
	ev, ok := decodeLine(BackendCodex, "plain diagnostic output")
	require.True(t, ok)
	assert.Equal(t, "plain diagnostic output", ev.Text)
}
