package ledger

import (
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/babarot/rim/internal/core/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func openStore(t *testing.T, ttl time.Duration, clock *fakeClock) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "rim.db")
	s, err := Open(path, ttl, WithClock(clock.Now), WithRunID("run-1"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func meta(path string) types.Metadata {
	return types.Metadata{
		OriginalPath: path,
		FileSize:     42,
		ContentHash:  "abc",
		Mtime:        100,
		Atime:        200,
		UnixMode:     0o644,
		UID:          1000,
		GID:          1000,
	}
}

func TestCreateAndFind(t *testing.T) {
	clock := &fakeClock{now: time.Unix(1_000, 0)}
	s := openStore(t, 10*time.Second, clock)

	e, err := s.Create(meta("/home/u/a.txt"), "/trash/a_1234567.txt")
	require.NoError(t, err)
	assert.Positive(t, e.ID)
	assert.Equal(t, int64(1_000), e.CreatedAt)
	assert.Equal(t, int64(1_010), e.Expiration)
	assert.Equal(t, "run-1", e.RunID)

	got, ok, err := s.FindByID(e.ID)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, e, got)

	_, ok, err = s.FindByID(e.ID + 100)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestIDsAreNeverReused(t *testing.T) {
	clock := &fakeClock{now: time.Unix(1_000, 0)}
	s := openStore(t, time.Hour, clock)

	first, err := s.Create(meta("/a"), "/trash/a")
	require.NoError(t, err)
	require.NoError(t, s.Delete(first.ID))

	second, err := s.Create(meta("/b"), "/trash/b")
	require.NoError(t, err)
	assert.Greater(t, second.ID, first.ID)
}

func TestDeleteMissingIsNoop(t *testing.T) {
	s := openStore(t, time.Hour, &fakeClock{now: time.Unix(1, 0)})
	assert.NoError(t, s.Delete(999))
	assert.NoError(t, s.DeleteAll([]int64{1, 2, 3}))
}

func TestFindExpiredIsStrict(t *testing.T) {
	clock := &fakeClock{now: time.Unix(1_000, 0)}
	s := openStore(t, 10*time.Second, clock)

	e, err := s.Create(meta("/a"), "/trash/a")
	require.NoError(t, err)

	expired, err := s.FindExpired(time.Unix(e.Expiration, 0))
	require.NoError(t, err)
	assert.Empty(t, expired)

	expired, err = s.FindExpired(time.Unix(e.Expiration+1, 0))
	require.NoError(t, err)
	require.Len(t, expired, 1)
	assert.Equal(t, e.ID, expired[0].ID)
}

func TestZeroTTLExpiresImmediately(t *testing.T) {
	clock := &fakeClock{now: time.Unix(1_000, 0)}
	s := openStore(t, 0, clock)

	e, err := s.Create(meta("/a"), "/trash/a")
	require.NoError(t, err)
	assert.Equal(t, e.CreatedAt, e.Expiration)

	expired, err := s.FindExpired(time.Unix(1_001, 0))
	require.NoError(t, err)
	assert.Len(t, expired, 1)
}

func TestRecentOrdering(t *testing.T) {
	clock := &fakeClock{now: time.Unix(1_000, 0)}
	s := openStore(t, time.Hour, clock)

	var ids []int64
	for i, p := range []string{"/a", "/b", "/c"} {
		clock.now = time.Unix(int64(1_000+i), 0)
		e, err := s.Create(meta(p), "/trash"+p)
		require.NoError(t, err)
		ids = append(ids, e.ID)
	}

	recent, err := s.Recent(2, "")
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, ids[2], recent[0].ID)
	assert.Equal(t, ids[1], recent[1].ID)

	none, err := s.Recent(0, "")
	require.NoError(t, err)
	assert.Empty(t, none)

	all, err := s.Recent(10, "")
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestRecentInParent(t *testing.T) {
	clock := &fakeClock{now: time.Unix(1_000, 0)}
	s := openStore(t, time.Hour, clock)

	_, err := s.CreateAll([]Record{
		{Metadata: meta("/p"), TrashPath: "/trash/p_1111111"},
		{Metadata: meta("/p/x"), TrashPath: "/trash/p_1111111/x"},
	})
	require.NoError(t, err)
	clock.now = clock.now.Add(time.Second)
	_, err = s.Create(meta("/q"), "/trash/q_2222222")
	require.NoError(t, err)
	_, err = s.Create(meta("/r"), "/Trash/r_3333333")
	require.NoError(t, err)

	top, err := s.Recent(10, "/trash")
	require.NoError(t, err)
	paths := make([]string, 0, len(top))
	for _, e := range top {
		paths = append(paths, e.TrashPath)
	}
	assert.Equal(t, []string{"/trash/q_2222222", "/trash/p_1111111"}, paths)

	one, err := s.Recent(1, "/trash/")
	require.NoError(t, err)
	require.Len(t, one, 1)
	assert.Equal(t, "/trash/q_2222222", one[0].TrashPath)
}

func TestCreateAllSharesExpiration(t *testing.T) {
	clock := &fakeClock{now: time.Unix(5_000, 0)}
	s := openStore(t, time.Minute, clock)

	entries, err := s.CreateAll([]Record{
		{Metadata: meta("/p"), TrashPath: "/trash/p_1111111"},
		{Metadata: meta("/p/x"), TrashPath: "/trash/p_1111111/x"},
		{Metadata: meta("/p/y"), TrashPath: "/trash/p_1111111/y"},
	})
	require.NoError(t, err)
	require.Len(t, entries, 3)
	for _, e := range entries {
		assert.Equal(t, entries[0].Expiration, e.Expiration)
	}

	under, err := s.FindUnder("/trash/p_1111111")
	require.NoError(t, err)
	assert.Len(t, under, 2)
}

func TestFindUnderEscapesWildcards(t *testing.T) {
	s := openStore(t, time.Hour, &fakeClock{now: time.Unix(1, 0)})

	_, err := s.Create(meta("/a"), "/trash/a_b/x")
	require.NoError(t, err)
	_, err = s.Create(meta("/b"), "/trash/aXb/y")
	require.NoError(t, err)

	under, err := s.FindUnder("/trash/a_b")
	require.NoError(t, err)
	require.Len(t, under, 1)
	assert.Equal(t, "/trash/a_b/x", under[0].TrashPath)
}

func TestFindUnderIsCaseSensitive(t *testing.T) {
	s := openStore(t, time.Hour, &fakeClock{now: time.Unix(1, 0)})

	_, err := s.Create(meta("/A/f"), "/t/A_x/f")
	require.NoError(t, err)
	_, err = s.Create(meta("/a/g"), "/t/a_x/g")
	require.NoError(t, err)

	under, err := s.FindUnder("/t/A_x")
	require.NoError(t, err)
	require.Len(t, under, 1)
	assert.Equal(t, "/t/A_x/f", under[0].TrashPath)

	under, err = s.FindUnder("/t/a_x/")
	require.NoError(t, err)
	require.Len(t, under, 1)
	assert.Equal(t, "/t/a_x/g", under[0].TrashPath)
}

func TestFindByOriginalPathNewestFirst(t *testing.T) {
	clock := &fakeClock{now: time.Unix(1_000, 0)}
	s := openStore(t, time.Hour, clock)

	old, err := s.Create(meta("/same"), "/trash/same_1")
	require.NoError(t, err)
	clock.now = clock.now.Add(time.Minute)
	newer, err := s.Create(meta("/same"), "/trash/same_2")
	require.NoError(t, err)

	found, err := s.FindByOriginalPath("/same")
	require.NoError(t, err)
	require.Len(t, found, 2)
	assert.Equal(t, newer.ID, found[0].ID)
	assert.Equal(t, old.ID, found[1].ID)
}

func TestReopenKeepsEntries(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rim.db")
	s, err := Open(path, time.Hour)
	require.NoError(t, err)
	e, err := s.Create(meta("/a"), "/trash/a")
	require.NoError(t, err)
	require.NoError(t, s.Close())

	s, err = Open(path, time.Hour)
	require.NoError(t, err)
	defer s.Close()

	got, ok, err := s.FindByID(e.ID)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "/a", got.OriginalPath)
}

func TestMalformedRowIsPersistenceError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rim.db")
	s, err := Open(path, time.Hour)
	require.NoError(t, err)
	defer s.Close()

	_, err = s.Create(meta("/a"), "/trash/a")
	require.NoError(t, err)

	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	defer db.Close()
	_, err = db.Exec(`UPDATE trash_entry SET unix_mode = 99999`)
	require.NoError(t, err)

	_, err = s.List()
	require.ErrorIs(t, err, ErrPersistence)
}
