package vcsx

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func initRepo(t *testing.T) *Repo {
	t.Helper()
	dir := t.TempDir()
	r := Open(dir)
	ctx := context.Background()
	require.NoError(t, r.Init(ctx))
	_, err := exec(ctx, dir, "config", "user.email", "test@example.com")
	require.NoError(t, err)
	_, err = exec(ctx, dir, "config", "user.name", "Test")
	require.NoError(t, err)
	return r
}

// exec is a tiny test-local helper mirroring Repo.run without reaching into
// the unexported method from a different receiver configuration.
func exec(ctx context.Context, dir string, args ...string) (string, error) {
	r := &Repo{Dir: dir}
	return r.run(ctx, args...)
}

func TestHeadHash_EmptyRepo(t *testing.T) {
	r := initRepo(t)
	hash, err := r.HeadHash(context.Background())
	require.NoError(t, err)
	assert.Empty(t, hash)
}

func TestHasUncommittedChanges(t *testing.T) {
	r := initRepo(t)
	ctx := context.Background()

	dirty, err := r.HasUncommittedChanges(ctx)
	require.NoError(t, err)
	assert.False(t, dirty)

	require.NoError(t, os.WriteFile(filepath.Join(r.Dir, "a.txt"), []byte("hi"), 0o644))

	dirty, err = r.HasUncommittedChanges(ctx)
	require.NoError(t, err)
	assert.True(t, dirty)
}

func TestCommitAll_ThenClean(t *testing.T) {
	r := initRepo(t)
	ctx := context.Background()
	require.NoError(t, os.WriteFile(filepath.Join(r.Dir, "a.txt"), []byte("hi"), 0o644))

	require.NoError(t, r.CommitAll(ctx, "initial commit"))

	dirty, err := r.HasUncommittedChanges(ctx)
	require.NoError(t, err)
	assert.False(t, dirty)

	hash, err := r.HeadHash(ctx)
	require.NoError(t, err)
	assert.NotEmpty(t, hash)
}

func TestRestore_ResetsToSnapshot(t *testing.T) {
	r := initRepo(t)
	ctx := context.Background()
	require.NoError(t, os.WriteFile(filepath.Join(r.Dir, "a.txt"), []byte("v1"), 0o644))
	require.NoError(t, r.CommitAll(ctx, "v1"))

	snapshot, err := r.HeadHash(ctx)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(r.Dir, "a.txt"), []byte("v2"), 0o644))
	require.NoError(t, r.CommitAll(ctx, "v2"))

	require.NoError(t, r.Restore(ctx, snapshot))

	data, err := os.ReadFile(filepath.Join(r.Dir, "a.txt"))
	require.NoError(t, err)
	assert.Equal(t, "v1", string(data))
}

func TestDirtyFiles_ListsChanged(t *testing.T) {
	r := initRepo(t)
	ctx := context.Background()
	require.NoError(t, os.WriteFile(filepath.Join(r.Dir, "b.txt"), []byte("hi"), 0o644))

	files, err := r.DirtyFiles(ctx)
	require.NoError(t, err)
	assert.Contains(t, files, "b.txt")
}
