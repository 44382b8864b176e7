package snapshot

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string, perm os.FileMode) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), perm))
	require.NoError(t, os.Chmod(path, perm))
}

func TestSnapshotRegularFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "notes.txt")
	writeFile(t, path, "hello", 0o640)

	meta, err := New().Snapshot(path)
	require.NoError(t, err)

	assert.Equal(t, path, meta.OriginalPath)
	assert.Equal(t, int64(5), meta.FileSize)
	assert.Equal(t, uint32(0o640), meta.UnixMode)
	assert.False(t, meta.IsDir)
	assert.Empty(t, meta.LinkTarget)
	assert.Len(t, meta.ContentHash, 64)
	assert.Equal(t, os.Getuid(), meta.UID)
}

func TestSnapshotHashDependsOnContent(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a", "notes.txt")
	b := filepath.Join(dir, "b", "notes.txt")
	c := filepath.Join(dir, "c", "notes.txt")
	writeFile(t, a, "first", 0o644)
	writeFile(t, b, "second", 0o644)
	writeFile(t, c, "first", 0o644)

	s := New()
	ma, err := s.Snapshot(a)
	require.NoError(t, err)
	mb, err := s.Snapshot(b)
	require.NoError(t, err)
	mc, err := s.Snapshot(c)
	require.NoError(t, err)

	assert.NotEqual(t, ma.ContentHash, mb.ContentHash)
	assert.Equal(t, ma.ContentHash, mc.ContentHash)
}

func TestSnapshotNotFound(t *testing.T) {
	_, err := New().Snapshot(filepath.Join(t.TempDir(), "missing"))
	require.ErrorIs(t, err, ErrNotFound)
}

func TestSnapshotSymlink(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "target.txt")
	writeFile(t, target, "data", 0o644)
	link := filepath.Join(dir, "link")
	require.NoError(t, os.Symlink(target, link))

	meta, err := New().Snapshot(link)
	require.NoError(t, err)
	assert.True(t, meta.IsSymlink())
	assert.Equal(t, target, meta.LinkTarget)
	assert.Equal(t, int64(0), meta.FileSize)
}

func TestTreeParentsFirst(t *testing.T) {
	root := filepath.Join(t.TempDir(), "project")
	writeFile(t, filepath.Join(root, "a.txt"), "aaa", 0o644)
	writeFile(t, filepath.Join(root, "sub", "b.txt"), "bb", 0o644)
	require.NoError(t, os.Mkdir(filepath.Join(root, "empty"), 0o755))

	tree, err := New().Tree(root)
	require.NoError(t, err)
	require.Len(t, tree, 5)

	index := make(map[string]int)
	for i, m := range tree {
		index[m.OriginalPath] = i
	}
	assert.Equal(t, 0, index[root])
	assert.Less(t, index[filepath.Join(root, "sub")], index[filepath.Join(root, "sub", "b.txt")])

	assert.True(t, tree[0].IsDir)
	assert.Equal(t, int64(5), tree[0].FileSize)
}

func TestTreeHashStable(t *testing.T) {
	base := t.TempDir()
	for _, name := range []string{"x", "y"} {
		writeFile(t, filepath.Join(base, name, "one.txt"), "1", 0o644)
		writeFile(t, filepath.Join(base, name, "deep", "two.txt"), "2", 0o644)
	}

	s := New()
	mx, err := s.Snapshot(filepath.Join(base, "x"))
	require.NoError(t, err)
	my, err := s.Snapshot(filepath.Join(base, "y"))
	require.NoError(t, err)
	assert.Equal(t, mx.ContentHash, my.ContentHash)

	writeFile(t, filepath.Join(base, "y", "deep", "two.txt"), "changed", 0o644)
	my, err = s.Snapshot(filepath.Join(base, "y"))
	require.NoError(t, err)
	assert.NotEqual(t, mx.ContentHash, my.ContentHash)
}
