package engine

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/ralphlabs/conductor/config"
	"github.com/ralphlabs/conductor/internal/orchestrator"
	"github.com/ralphlabs/conductor/internal/supervisor"
	"github.com/ralphlabs/conductor/internal/tasks"
	"github.com/ralphlabs/conductor/internal/validate"
	"github.com/ralphlabs/conductor/internal/vcsx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// rebindRoles reconstructs the Supervisor/Validator/Orchestrator against
// e.fgRunner, which tests set to a fakeForegroundRunner before calling this.
// New() itself always wires the real *agent.Runner into these, so a fake
// swapped in afterward needs this to actually take effect.
func rebindRoles(e *Engine) {
	e.sup = supervisor.New(e.fgRunner)
	e.val = validate.New(e.fgRunner, e.workspace)
	e.orch = orchestrator.New(e.fgRunner, e.workspace).WithAttempts(e.cfg.OrchestrationAttempts, e.cfg.ReviewAttempts)
}

func initWorkspace(t *testing.T) string {
	t.Helper()
	ws := t.TempDir()
	repo := vcsx.Open(ws)
	ctx := context.Background()
	require.NoError(t, repo.Init(ctx))

	cfg := filepath.Join(ws, ".git", "config")
	data, err := os.ReadFile(cfg)
	require.NoError(t, err)
	data = append(data, []byte("\n[user]\n\temail = test@example.com\n\tname = Test\n")...)
	require.NoError(t, os.WriteFile(cfg, data, 0o644))

	return ws
}

func writeTasksFile(t *testing.T, ws string, list []tasks.Task) {
	t.Helper()
	data, err := json.MarshalIndent(list, "", "  ")
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(ws, "tasks.json"), data, 0o644))
}

func testEngineConfig() config.EngineConfig {
	return config.EngineConfig{
		MaxFailedRetries:          3,
		OrchestrationAttempts:     3,
		ReviewAttempts:            3,
		RealtimeIntervalMs:        5,
		CheckIntervalMs:           1_000_000, // effectively never, for single-pass tests
		GracefulShutdownTimeoutMs: 100,
	}
}

func TestRun_CompletesSingleCleanTask(t *testing.T) {
	ws := initWorkspace(t)
	writeTasksFile(t, ws, []tasks.Task{{ID: "1", Description: "do a thing", Status: tasks.StatusPending}})

	// Worker's log: an init event then a successful result with no error.
	logContent := strings.Join([]string{
		`{"type":"system","subtype":"init","session_id":"s1","model":"m"}`,
		`{"type":"result","subtype":"success","result":"TASK_COMPLETED","total_cost_usd":0.05}`,
	}, "\n") + "\n"

	// Nothing for the Validator to do: commit the seed file up front so the
	// tree is already clean when Validate() runs.
	require.NoError(t, vcsx.Open(ws).CommitAll(context.Background(), "seed"))

	e := New(ws, testEngineConfig(), nil, nil, nil)
	e.bgRunner = &fakeBackgroundRunner{logContent: logContent}
	// The Validator's scripted response mimics what the real agent would do:
	// commit whatever is dirty (here, the MarkInProgress rewrite of
	// tasks.json) so the post-check observes a clean tree.
	e.fgRunner = &fakeForegroundRunner{respond: func(prompt string) (string, float64) {
		if strings.Contains(prompt, "Verify this change set") {
			_ = vcsx.Open(ws).CommitAll(context.Background(), "validator commit")
		}
		return "", 0
	}}
	// Rebind the role helpers to the fake foreground runner so Validate/Check
	// never shell out to a real agent CLI.
	rebindRoles(e)

	err := e.Run(context.Background(), 0)
	require.NoError(t, err)

	list, err := tasks.Open(ws).Load()
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, tasks.StatusCompleted, list[0].Status)
}

func TestRun_WorkerErrorMarksFailedThenStopsOnRetryBudget(t *testing.T) {
	ws := initWorkspace(t)
	writeTasksFile(t, ws, []tasks.Task{{ID: "1", Description: "do a thing", Status: tasks.StatusPending}})
	require.NoError(t, vcsx.Open(ws).CommitAll(context.Background(), "seed"))

	logContent := strings.Join([]string{
		`{"type":"system","subtype":"init","session_id":"s1","model":"m"}`,
		`{"type":"result","subtype":"error","is_error":true,"result":"boom","total_cost_usd":0.01}`,
	}, "\n") + "\n"

	cfg := testEngineConfig()
	cfg.MaxFailedRetries = 1

	e := New(ws, cfg, nil, nil, nil)
	e.bgRunner = &fakeBackgroundRunner{logContent: logContent}
	// Orchestrator recovery also "fails" (never emits ORCHESTRATION_DONE), so
	// the retry budget is exhausted after one attempt.
	e.fgRunner = &fakeForegroundRunner{respond: func(string) (string, float64) { return "no token here", 0 }}
	rebindRoles(e)

	err := e.Run(context.Background(), 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "retry budget exhausted")
}

func TestDurationOrDefault(t *testing.T) {
	assert.Equal(t, 5*time.Millisecond, durationOrDefault(5, time.Second))
	assert.Equal(t, time.Second, durationOrDefault(0, time.Second))
	assert.Equal(t, time.Second, durationOrDefault(-1, time.Second))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "hello", truncate("hello", 10))
	assert.Equal(t, "he…", truncate("hello", 2))
}
