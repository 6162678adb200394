package worker

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ralphlabs/conductor/internal/agent"
	"github.com/ralphlabs/conductor/internal/tasks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRates() agent.Rates {
	return agent.Rates{InputPerMillionUSD: 3, OutputPerMillionUSD: 15}
}

func testRunner() *agent.Runner {
	return agent.NewRunner(agent.BackendClaude, testRates())
}

func TestReadNewEvents_IdempotentWithNoGrowth(t *testing.T) {
	ws := t.TempDir()
	w := New(tasks.Task{ID: "1", Description: "d"}, ws, testRunner(), testRates())
	require.NoError(t, os.MkdirAll(filepath.Dir(w.LogPath()), 0o755))

	line := `{"type":"system","subtype":"init","session_id":"s1","model":"m"}` + "\n"
	require.NoError(t, os.WriteFile(w.LogPath(), []byte(line), 0o644))

	first, err := w.ReadNewEvents()
	require.NoError(t, err)
	require.Len(t, first, 1)
	assert.Equal(t, agent.EventInit, first[0].Type)

	second, err := w.ReadNewEvents()
	require.NoError(t, err)
	assert.Empty(t, second)
}

func TestReadNewEvents_TruncatedTailNotConsumed(t *testing.T) {
	ws := t.TempDir()
	w := New(tasks.Task{ID: "1", Description: "d"}, ws, testRunner(), testRates())
	require.NoError(t, os.MkdirAll(filepath.Dir(w.LogPath()), 0o755))

	full := `{"type":"assistant","message":{"content":[{"type":"text","text":"hi"}]}}` + "\n"
	partial := `{"type":"assistant","message":{"content":[{"typ`
	require.NoError(t, os.WriteFile(w.LogPath(), []byte(full+partial), 0o644))

	events, err := w.ReadNewEvents()
	require.NoError(t, err)
	require.Len(t, events, 1)

	// Appending the rest of the partial line should make it visible on the
	// next read, proving the offset stopped before it.
	f, err := os.OpenFile(w.LogPath(), os.O_APPEND|os.O_WRONLY, 0o644)
	require.NoError(t, err)
	_, err = f.WriteString(`e":"text","text":"done"}]}}` + "\n")
	require.NoError(t, err)
	require.NoError(t, f.Close())

	more, err := w.ReadNewEvents()
	require.NoError(t, err)
	require.Len(t, more, 1)
	assert.Equal(t, "done", more[0].Text)
}

func TestReadLog_SummarizesResult(t *testing.T) {
	ws := t.TempDir()
	w := New(tasks.Task{ID: "1", Description: "d"}, ws, testRunner(), testRates())
	require.NoError(t, os.MkdirAll(filepath.Dir(w.LogPath()), 0o755))

	lines := []string{
		`{"type":"system","subtype":"init","session_id":"s1","model":"m"}`,
		`{"type":"assistant","message":{"content":[{"type":"text","text":"working"}]}}`,
		`{"type":"result","subtype":"success","result":"TASK_COMPLETED","total_cost_usd":0.12}`,
	}
	require.NoError(t, os.WriteFile(w.LogPath(), []byte(joinLines(lines)), 0o644))

	lr, err := w.ReadLog()
	require.NoError(t, err)
	assert.True(t, lr.Completed)
	assert.False(t, lr.IsError)
	assert.Equal(t, "s1", lr.SessionID)
	assert.Equal(t, 0.12, lr.CostUSD)
}

func TestReadLog_EstimatesCostWhenKilledBeforeResult(t *testing.T) {
	ws := t.TempDir()
	w := New(tasks.Task{ID: "1", Description: "d"}, ws, testRunner(), testRates())
	require.NoError(t, os.MkdirAll(filepath.Dir(w.LogPath()), 0o755))

	lines := []string{
		`{"type":"system","subtype":"init","session_id":"s1","model":"m"}`,
		`{"type":"assistant","message":{"content":[{"type":"text","text":"working"}],"usage":{"input_tokens":1200,"output_tokens":400}}}`,
	}
	require.NoError(t, os.WriteFile(w.LogPath(), []byte(joinLines(lines)), 0o644))

	lr, err := w.ReadLog()
	require.NoError(t, err)
	assert.False(t, lr.Completed)
	assert.True(t, lr.Estimated)
	assert.InDelta(t, 0.0096, lr.CostUSD, 0.0001)
}

func TestExtractHandover(t *testing.T) {
	text := "some chatter\nHANDOVER_START\ndid X, left Y undone\nHANDOVER_END\nmore chatter"
	assert.Equal(t, "did X, left Y undone", extractHandover(text))
}

func TestExtractHandover_MissingFence(t *testing.T) {
	assert.Equal(t, "", extractHandover("no fence here"))
}

func joinLines(lines []string) string {
	out := ""
	for _, l := range lines {
		out += l + "\n"
	}
	return out
}
