package runstate

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_MissingFileReturnsDefault(t *testing.T) {
	s, err := Load(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, StatusStopped, s.Status)
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	s := &State{CurrentTaskID: "2.1", Status: StatusRunning, FailedRetries: 1, ActiveAgent: "claude"}
	require.NoError(t, Save(dir, s))

	loaded, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "2.1", loaded.CurrentTaskID)
	assert.Equal(t, StatusRunning, loaded.Status)
	assert.Equal(t, 1, loaded.FailedRetries)
}

func TestLoad_RecoversFromInterruptedTmpWrite(t *testing.T) {
	dir := t.TempDir()
	s := &State{CurrentTaskID: "1", Status: StatusRunning}
	require.NoError(t, Save(dir, s))

	// Simulate a crash mid-write: real file removed, tmp left behind.
	require.NoError(t, os.Rename(path(dir), tmpPath(dir)))

	loaded, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "1", loaded.CurrentTaskID)
}
