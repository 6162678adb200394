package cost

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func osOpenAppend(workspace string) (*os.File, error) {
	dir := filepath.Join(workspace, ".state")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return os.OpenFile(filepath.Join(dir, fileName), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
}

func TestAppend_UpdatesTotals(t *testing.T) {
	l := Open(t.TempDir())

	require.NoError(t, l.Append(Record{Source: SourceWorker, CostUSD: 0.10, TaskID: "1"}))
	require.NoError(t, l.Append(Record{Source: SourceValidator, CostUSD: 0.05, TaskID: "1"}))
	require.NoError(t, l.Append(Record{Source: SourceWorker, CostUSD: 0.20, TaskID: "2"}))

	totals := l.Totals()
	assert.InDelta(t, 0.30, totals[SourceWorker], 0.0001)
	assert.InDelta(t, 0.05, totals[SourceValidator], 0.0001)
	assert.InDelta(t, 0.35, l.Total(), 0.0001)
}

func TestAppend_IsMonotonicRecordCount(t *testing.T) {
	workspace := t.TempDir()
	l := Open(workspace)
	for i := 0; i < 5; i++ {
		require.NoError(t, l.Append(Record{Source: SourceWorker, CostUSD: 0.01}))
	}

	reloaded := Open(workspace)
	require.NoError(t, reloaded.LoadTotals())
	assert.InDelta(t, 0.05, reloaded.Total(), 0.0001)
}

func TestLoadTotals_MissingFileIsNotError(t *testing.T) {
	l := Open(t.TempDir())
	require.NoError(t, l.LoadTotals())
	assert.Equal(t, 0.0, l.Total())
}

func TestLoadTotals_SkipsMalformedLines(t *testing.T) {
	workspace := t.TempDir()
	l := Open(workspace)
	require.NoError(t, l.Append(Record{Source: SourceWorker, CostUSD: 0.10}))

	// Append a malformed line directly, bypassing the ledger API.
	f, err := osOpenAppend(workspace)
	require.NoError(t, err)
	_, err = f.WriteString("not json\n")
	require.NoError(t, err)
	require.NoError(t, f.Close())

	reloaded := Open(workspace)
	require.NoError(t, reloaded.LoadTotals())
	assert.InDelta(t, 0.10, reloaded.Total(), 0.0001)
}
