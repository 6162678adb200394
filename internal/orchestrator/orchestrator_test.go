package orchestrator

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ralphlabs/conductor/internal/agent"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateTasksFile_Valid(t *testing.T) {
	ws := t.TempDir()
	path := filepath.Join(ws, tasksFileName)
	require.NoError(t, os.WriteFile(path, []byte(`[{"id":"1","description":"a"},{"id":"1.1","description":"b"}]`), 0o644))

	o := New(agent.NewRunner(agent.BackendClaude, agent.Rates{}), ws)
	assert.NoError(t, o.validateTasksFile(path))
}

func TestValidateTasksFile_DuplicateID(t *testing.T) {
	ws := t.TempDir()
	path := filepath.Join(ws, tasksFileName)
	require.NoError(t, os.WriteFile(path, []byte(`[{"id":"1","description":"a"},{"id":"1","description":"b"}]`), 0o644))

	o := New(agent.NewRunner(agent.BackendClaude, agent.Rates{}), ws)
	err := o.validateTasksFile(path)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate")
}

func TestValidateTasksFile_MissingDescription(t *testing.T) {
	ws := t.TempDir()
	path := filepath.Join(ws, tasksFileName)
	require.NoError(t, os.WriteFile(path, []byte(`[{"id":"1","description":""}]`), 0o644))

	o := New(agent.NewRunner(agent.BackendClaude, agent.Rates{}), ws)
	assert.Error(t, o.validateTasksFile(path))
}

func TestValidateTasksFile_NotAnArray(t *testing.T) {
	ws := t.TempDir()
	path := filepath.Join(ws, tasksFileName)
	require.NoError(t, os.WriteFile(path, []byte(`{"tasks": []}`), 0o644))

	o := New(agent.NewRunner(agent.BackendClaude, agent.Rates{}), ws)
	assert.Error(t, o.validateTasksFile(path))
}
