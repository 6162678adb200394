package tasks

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_MissingStatusNormalizesToPending(t *testing.T) {
	ws := t.TempDir()
	raw := `[{"id":"1","description":"D","steps":["s"]}]`
	require.NoError(t, os.WriteFile(filepath.Join(ws, fileName), []byte(raw), 0o644))

	s := Open(ws)
	list, err := s.Load()
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, StatusPending, list[0].Status)
}

func TestNext_RunsTaskWithOmittedStatus(t *testing.T) {
	ws := t.TempDir()
	raw := `[{"id":"1","description":"D","steps":["s"]}]`
	require.NoError(t, os.WriteFile(filepath.Join(ws, fileName), []byte(raw), 0o644))

	s := Open(ws)
	next, err := s.Next()
	require.NoError(t, err)
	require.NotNil(t, next)
	assert.Equal(t, "1", next.ID)
}

func TestNext_SkipsCompletedAndFailed(t *testing.T) {
	ws := t.TempDir()
	s := Open(ws)
	require.NoError(t, s.save([]Task{
		{ID: "1", Status: StatusCompleted},
		{ID: "2", Status: StatusFailed},
		{ID: "3", Status: StatusPending},
	}))

	next, err := s.Next()
	require.NoError(t, err)
	require.NotNil(t, next)
	assert.Equal(t, "3", next.ID)
}
