package trash

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/babarot/rim/internal/core/types"
	"github.com/babarot/rim/internal/ledger"
	"github.com/babarot/rim/internal/snapshot"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testTTL = time.Hour

type clock struct {
	now time.Time
}

func (c *clock) Now() time.Time { return c.now }

type env struct {
	manager *Manager
	store   *ledger.Store
	clock   *clock
	trash   string
	work    string
}

func newEnv(t *testing.T, opts ...Option) *env {
	t.Helper()
	base := t.TempDir()
	e := &env{
		clock: &clock{now: time.Unix(1_700_000_000, 0)},
		trash: filepath.Join(base, "trash"),
		work:  filepath.Join(base, "work"),
	}
	require.NoError(t, os.MkdirAll(e.work, 0o755))

	store, err := ledger.Open(filepath.Join(e.trash, "rim.db"), testTTL, ledger.WithClock(e.clock.Now))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	e.store = store

	opts = append([]Option{WithClock(e.clock.Now)}, opts...)
	m, err := NewManager(Config{TrashDir: e.trash, TTL: testTTL}, store, opts...)
	require.NoError(t, err)
	e.manager = m
	return e
}

func (e *env) file(t *testing.T, rel, content string, perm os.FileMode) string {
	t.Helper()
	path := filepath.Join(e.work, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), perm))
	require.NoError(t, os.Chmod(path, perm))
	return path
}

func (e *env) rows(t *testing.T) []types.TrashEntry {
	t.Helper()
	rows, err := e.store.List()
	require.NoError(t, err)
	return rows
}

func TestRecycleAndRecover(t *testing.T) {
	e := newEnv(t)
	path := e.file(t, "notes.txt", "hello world", 0o640)

	before, err := snapshot.New().Snapshot(path)
	require.NoError(t, err)

	entry, err := e.manager.Recycle(path, RecycleOptions{})
	require.NoError(t, err)
	assert.Equal(t, path, entry.OriginalPath)
	assert.Equal(t, e.trash, filepath.Dir(entry.TrashPath))
	assert.Equal(t, e.clock.now.Add(testTTL).Unix(), entry.Expiration)

	assert.NoFileExists(t, path)
	assert.FileExists(t, entry.TrashPath)

	require.NoError(t, e.manager.Recover(entry.ID))

	after, err := snapshot.New().Snapshot(path)
	require.NoError(t, err)
	assert.Equal(t, before.FileSize, after.FileSize)
	assert.Equal(t, before.ContentHash, after.ContentHash)
	assert.Equal(t, before.UnixMode, after.UnixMode)
	assert.Equal(t, before.UID, after.UID)
	assert.Equal(t, before.GID, after.GID)
	assert.NoFileExists(t, entry.TrashPath)

	_, ok, err := e.store.FindByID(entry.ID)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRecycleErrors(t *testing.T) {
	e := newEnv(t)
	inTrash := filepath.Join(e.trash, "already_1234567.txt")
	require.NoError(t, os.WriteFile(inTrash, []byte("x"), 0o644))
	dir := filepath.Join(e.work, "dir")
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "child"), 0o755))

	tests := []struct {
		name string
		path string
		opts RecycleOptions
		want error
	}{
		{name: "missing", path: filepath.Join(e.work, "missing"), want: ErrNotFound},
		{name: "root", path: "/", want: ErrValidation},
		{name: "dot", path: ".", want: ErrValidation},
		{name: "trash dir", path: e.trash, opts: RecycleOptions{Recursive: true}, want: ErrValidation},
		{name: "inside trash dir", path: inTrash, want: ErrValidation},
		{name: "parent of trash dir", path: filepath.Dir(e.trash), opts: RecycleOptions{Recursive: true}, want: ErrValidation},
		{name: "non-empty dir", path: dir, want: ErrValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := e.manager.Recycle(tt.path, tt.opts)
			require.ErrorIs(t, err, tt.want)
		})
	}
	assert.Empty(t, e.rows(t))
}

func TestRecycleEmptyDirWithoutRecursive(t *testing.T) {
	e := newEnv(t)
	dir := filepath.Join(e.work, "empty")
	require.NoError(t, os.Mkdir(dir, 0o755))

	entry, err := e.manager.Recycle(dir, RecycleOptions{})
	require.NoError(t, err)
	assert.True(t, entry.Metadata.IsDir)
	assert.NoDirExists(t, dir)
	assert.DirExists(t, entry.TrashPath)
}

func TestRecycleIdenticalFilesTwice(t *testing.T) {
	e := newEnv(t)
	a := e.file(t, "a/notes.txt", "same", 0o644)
	b := e.file(t, "b/notes.txt", "same", 0o644)

	ea, err := e.manager.Recycle(a, RecycleOptions{})
	require.NoError(t, err)
	eb, err := e.manager.Recycle(b, RecycleOptions{})
	require.NoError(t, err)

	assert.NotEqual(t, ea.TrashPath, eb.TrashPath)
	assert.FileExists(t, ea.TrashPath)
	assert.FileExists(t, eb.TrashPath)
}

func TestRecycleDifferentContentSameName(t *testing.T) {
	e := newEnv(t)
	a := e.file(t, "a/notes.txt", "first", 0o644)
	b := e.file(t, "b/notes.txt", "second", 0o644)

	ea, err := e.manager.Recycle(a, RecycleOptions{})
	require.NoError(t, err)
	eb, err := e.manager.Recycle(b, RecycleOptions{})
	require.NoError(t, err)

	assert.NotEqual(t, ea.TrashPath, eb.TrashPath)
	assert.Regexp(t, `^notes_[0-9a-f]{7}\.txt$`, filepath.Base(ea.TrashPath))
	assert.Regexp(t, `^notes_[0-9a-f]{7}\.txt$`, filepath.Base(eb.TrashPath))
}

// vanishing removes the file it snapshots, so the following move fails
type vanishing struct {
	snapshot.Snapshotter
}

func (v vanishing) Snapshot(path string) (types.Metadata, error) {
	meta, err := v.Snapshotter.Snapshot(path)
	if err != nil {
		return meta, err
	}
	return meta, os.Remove(path)
}

func TestRecycleRollsBackWhenMoveFails(t *testing.T) {
	e := newEnv(t, WithSnapshotter(vanishing{snapshot.New()}))
	path := e.file(t, "gone.txt", "data", 0o644)

	_, err := e.manager.Recycle(path, RecycleOptions{})
	require.ErrorIs(t, err, ErrIO)
	assert.Empty(t, e.rows(t))
}

func TestRecoverAlreadyExists(t *testing.T) {
	e := newEnv(t)
	path := e.file(t, "notes.txt", "original", 0o644)

	entry, err := e.manager.Recycle(path, RecycleOptions{})
	require.NoError(t, err)
	e.file(t, "notes.txt", "replacement", 0o644)

	err = e.manager.Recover(entry.ID)
	require.ErrorIs(t, err, ErrAlreadyExists)

	_, ok, err := e.store.FindByID(entry.ID)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.FileExists(t, entry.TrashPath)
}

func TestRecoverUnknownID(t *testing.T) {
	e := newEnv(t)
	err := e.manager.Recover(42)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestRecoverMissingTrashFile(t *testing.T) {
	e := newEnv(t)
	path := e.file(t, "notes.txt", "data", 0o644)
	entry, err := e.manager.Recycle(path, RecycleOptions{})
	require.NoError(t, err)
	require.NoError(t, os.Remove(entry.TrashPath))

	err = e.manager.Recover(entry.ID)
	require.ErrorIs(t, err, ErrNotFound)
	assert.Len(t, e.rows(t), 1)
}

func TestRecoverCreatesParents(t *testing.T) {
	e := newEnv(t)
	path := e.file(t, "deep/nested/notes.txt", "data", 0o644)
	entry, err := e.manager.Recycle(path, RecycleOptions{})
	require.NoError(t, err)
	require.NoError(t, os.RemoveAll(filepath.Join(e.work, "deep")))

	require.NoError(t, e.manager.Recover(entry.ID))
	assert.FileExists(t, path)
}

func TestRecursiveRecycleAndRecover(t *testing.T) {
	e := newEnv(t)
	e.file(t, "project/README.md", "readme", 0o644)
	e.file(t, "project/src/main.go", "package main", 0o600)
	root := filepath.Join(e.work, "project")
	require.NoError(t, os.Chmod(filepath.Join(root, "src"), 0o700))

	entry, err := e.manager.Recycle(root, RecycleOptions{Recursive: true})
	require.NoError(t, err)
	assert.True(t, entry.Metadata.IsDir)
	assert.NoDirExists(t, root)

	rows := e.rows(t)
	require.Len(t, rows, 4)
	for _, r := range rows {
		assert.Equal(t, entry.Expiration, r.Expiration)
	}
	nested, err := e.store.FindUnder(entry.TrashPath)
	require.NoError(t, err)
	assert.Len(t, nested, 3)
	assert.FileExists(t, filepath.Join(entry.TrashPath, "src", "main.go"))

	require.NoError(t, e.manager.Recover(entry.ID))
	assert.FileExists(t, filepath.Join(root, "src", "main.go"))
	assert.Empty(t, e.rows(t))

	info, err := os.Stat(filepath.Join(root, "src"))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o700), info.Mode().Perm())
}

func TestRecoverLeavesCaseVariantDirectory(t *testing.T) {
	e := newEnv(t)
	upper := e.file(t, "Proj/a.txt", "same", 0o644)
	lower := filepath.Join(e.work, "proj", "a.txt")
	if err := os.Mkdir(filepath.Dir(lower), 0o755); err != nil {
		t.Skipf("filesystem folds case: %v", err)
	}
	require.NoError(t, os.WriteFile(lower, []byte("same"), 0o644))

	first, err := e.manager.Recycle(filepath.Dir(upper), RecycleOptions{Recursive: true})
	require.NoError(t, err)
	second, err := e.manager.Recycle(filepath.Dir(lower), RecycleOptions{Recursive: true})
	require.NoError(t, err)
	require.Len(t, e.rows(t), 4)

	require.NoError(t, e.manager.Recover(first.ID))
	assert.FileExists(t, upper)

	rows := e.rows(t)
	require.Len(t, rows, 2)
	for _, r := range rows {
		assert.True(t, r.TrashPath == second.TrashPath || strings.HasPrefix(r.TrashPath, second.TrashPath+"/"),
			"unexpected row %s", r.TrashPath)
	}
	require.NoError(t, e.manager.Recover(second.ID))
	assert.FileExists(t, lower)
	assert.Empty(t, e.rows(t))
}

func TestRecoverPathNewestFirst(t *testing.T) {
	e := newEnv(t)
	path := e.file(t, "notes.txt", "v1", 0o644)
	first, err := e.manager.Recycle(path, RecycleOptions{})
	require.NoError(t, err)

	e.clock.now = e.clock.now.Add(time.Minute)
	e.file(t, "notes.txt", "v2", 0o644)
	second, err := e.manager.Recycle(path, RecycleOptions{})
	require.NoError(t, err)

	require.NoError(t, e.manager.RecoverPath(path))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "v2", string(data))

	_, ok, err := e.store.FindByID(second.ID)
	require.NoError(t, err)
	assert.False(t, ok)
	_, ok, err = e.store.FindByID(first.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	require.ErrorIs(t, e.manager.RecoverPath(filepath.Join(e.work, "never")), ErrNotFound)
}

func TestListHidesNestedRows(t *testing.T) {
	e := newEnv(t)
	e.file(t, "dir/a.txt", "a", 0o644)
	single := e.file(t, "single.txt", "s", 0o644)

	_, err := e.manager.Recycle(filepath.Join(e.work, "dir"), RecycleOptions{Recursive: true})
	require.NoError(t, err)
	_, err = e.manager.Recycle(single, RecycleOptions{})
	require.NoError(t, err)

	list, err := e.manager.List()
	require.NoError(t, err)
	assert.Len(t, list, 2)

	recent, err := e.manager.ListRecent(10)
	require.NoError(t, err)
	assert.Len(t, recent, 2)

	newest, err := e.manager.ListRecent(1)
	require.NoError(t, err)
	require.Len(t, newest, 1)
	assert.Equal(t, single, newest[0].OriginalPath)
}

func TestReconcile(t *testing.T) {
	e := newEnv(t)
	kept := e.file(t, "kept.txt", "k", 0o644)
	lost := e.file(t, "lost.txt", "l", 0o644)

	_, err := e.manager.Recycle(kept, RecycleOptions{})
	require.NoError(t, err)
	lostEntry, err := e.manager.Recycle(lost, RecycleOptions{})
	require.NoError(t, err)

	require.NoError(t, os.Remove(lostEntry.TrashPath))
	stray := filepath.Join(e.trash, "stray.bin")
	require.NoError(t, os.WriteFile(stray, []byte("?"), 0o644))

	report, err := e.manager.Reconcile()
	require.NoError(t, err)
	require.Len(t, report.Dangling, 1)
	assert.Equal(t, lostEntry.ID, report.Dangling[0].ID)
	assert.Equal(t, []string{stray}, report.Strays)
	assert.False(t, report.Clean())

	n, err := e.manager.PruneDangling(report)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Len(t, e.rows(t), 1)
}

func TestParseID(t *testing.T) {
	tests := []struct {
		arg     string
		id      int64
		isID    bool
		invalid bool
	}{
		{arg: "12", id: 12, isID: true},
		{arg: " 7 ", id: 7, isID: true},
		{arg: "#3", id: 3, isID: true},
		{arg: "0", invalid: true},
		{arg: "#", invalid: true},
		{arg: "#abc", invalid: true},
		{arg: "", invalid: true},
		{arg: "99999999999999999999", invalid: true},
		{arg: "notes.txt"},
		{arg: "./12"},
		{arg: "/tmp/12"},
		{arg: "-1"},
	}

	for _, tt := range tests {
		t.Run(tt.arg, func(t *testing.T) {
			id, isID, err := ParseID(tt.arg)
			if tt.invalid {
				assert.ErrorIs(t, err, ErrValidation)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.isID, isID)
			assert.Equal(t, tt.id, id)
		})
	}
}

func TestRecoverTarget(t *testing.T) {
	e := newEnv(t)
	a := e.file(t, "a.txt", "a", 0o644)
	b := e.file(t, "b.txt", "b", 0o644)

	entryA, err := e.manager.Recycle(a, RecycleOptions{})
	require.NoError(t, err)
	_, err = e.manager.Recycle(b, RecycleOptions{})
	require.NoError(t, err)

	require.NoError(t, e.manager.RecoverTarget(strconv.FormatInt(entryA.ID, 10)))
	assert.FileExists(t, a)

	require.NoError(t, e.manager.RecoverTarget(b))
	assert.FileExists(t, b)
	assert.Empty(t, e.rows(t))

	assert.ErrorIs(t, e.manager.RecoverTarget("#x"), ErrValidation)
}
