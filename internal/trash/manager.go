package trash

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/babarot/rim/internal/core/atomic"
	"github.com/babarot/rim/internal/core/types"
	"github.com/babarot/rim/internal/ledger"
	"github.com/babarot/rim/internal/snapshot"
	rimfs "github.com/babarot/rim/internal/utils/fs"
	"github.com/samber/lo"
)

// maxAttempts bounds the search for a free trash location
const maxAttempts = 1000

// Store is the subset of the ledger the Manager depends on
type Store interface {
	CreateAll(records []ledger.Record) ([]types.TrashEntry, error)
	DeleteAll(ids []int64) error
	FindByID(id int64) (types.TrashEntry, bool, error)
	FindByOriginalPath(path string) ([]types.TrashEntry, error)
	FindExpired(now time.Time) ([]types.TrashEntry, error)
	FindUnder(dir string) ([]types.TrashEntry, error)
	Recent(n int, parent string) ([]types.TrashEntry, error)
	List() ([]types.TrashEntry, error)
	Path() string
}

// Manager moves files in and out of the trash directory and keeps the
// ledger in step with it
type Manager struct {
	config    Config
	store     Store
	snapshots snapshot.Snapshotter
	paths     Generator
	now       func() time.Time
}

// Option configures a Manager
type Option func(*Manager)

// WithSnapshotter replaces the local filesystem snapshotter
func WithSnapshotter(s snapshot.Snapshotter) Option {
	return func(m *Manager) {
		m.snapshots = s
	}
}

// WithClock replaces the clock used to decide what has expired
func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		m.now = now
	}
}

// RecycleOptions controls a single Recycle call
type RecycleOptions struct {
	// Recursive allows non-empty directories to be recycled
	Recursive bool
}

// NewManager creates a trash manager on top of store. The trash directory is
// created if it does not exist.
func NewManager(cfg Config, store Store, opts ...Option) (*Manager, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	cfg.TrashDir = filepath.Clean(cfg.TrashDir)

	if err := os.MkdirAll(cfg.TrashDir, 0o700); err != nil {
		return nil, fmt.Errorf("failed to create trash directory: %w", err)
	}

	m := &Manager{
		config:    cfg,
		store:     store,
		snapshots: snapshot.New(),
		paths:     Generator{TrashDir: cfg.TrashDir},
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}

	slog.Debug("trash manager ready", "trash_dir", cfg.TrashDir, "ttl", cfg.TTL, "ledger", store.Path())
	return m, nil
}

// TrashDir returns the directory recycled files are moved into
func (m *Manager) TrashDir() string {
	return m.config.TrashDir
}

// Recycle moves path into the trash directory and records it in the ledger.
// The ledger rows are written first; if the move then fails they are removed
// again.
func (m *Manager) Recycle(path string, opts RecycleOptions) (types.TrashEntry, error) {
	const op = "recycle"

	abs, err := filepath.Abs(path)
	if err != nil {
		return types.TrashEntry{}, newError(op, path, ErrValidation, err)
	}
	if err := m.checkSafe(path, abs); err != nil {
		return types.TrashEntry{}, newError(op, path, ErrValidation, err)
	}

	info, err := os.Lstat(abs)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return types.TrashEntry{}, newError(op, abs, ErrNotFound, err)
		}
		return types.TrashEntry{}, newError(op, abs, ErrIO, err)
	}

	same, err := atomic.SameDevice(abs, m.config.TrashDir)
	if err != nil {
		return types.TrashEntry{}, newError(op, abs, ErrIO, err)
	}
	if !same {
		return types.TrashEntry{}, newError(op, abs, ErrIO, atomic.CrossDeviceError(abs, m.config.TrashDir))
	}

	var tree []types.Metadata
	if info.IsDir() {
		if !opts.Recursive {
			empty, err := isEmptyDir(abs)
			if err != nil {
				return types.TrashEntry{}, newError(op, abs, ErrIO, err)
			}
			if !empty {
				return types.TrashEntry{}, newError(op, abs, ErrValidation, errors.New("is a directory"))
			}
		}
		tree, err = m.snapshots.Tree(abs)
	} else {
		var meta types.Metadata
		meta, err = m.snapshots.Snapshot(abs)
		tree = []types.Metadata{meta}
	}
	if err != nil {
		if errors.Is(err, snapshot.ErrNotFound) {
			return types.TrashEntry{}, newError(op, abs, ErrNotFound, err)
		}
		return types.TrashEntry{}, newError(op, abs, ErrIO, err)
	}

	dst, err := m.freePath(tree[0])
	if err != nil {
		return types.TrashEntry{}, newError(op, abs, ErrIO, err)
	}

	records := make([]ledger.Record, 0, len(tree))
	for _, node := range tree {
		rel, err := filepath.Rel(abs, node.OriginalPath)
		if err != nil {
			return types.TrashEntry{}, newError(op, node.OriginalPath, ErrIO, err)
		}
		records = append(records, ledger.Record{
			Metadata:  node,
			TrashPath: filepath.Join(dst, rel),
		})
	}

	tx := newTransaction(abs)
	entries, err := m.store.CreateAll(records)
	if err != nil {
		tx.Fail(err)
		return types.TrashEntry{}, storeError(op, abs, err)
	}
	if err := tx.Transition(StateRecorded); err != nil {
		return types.TrashEntry{}, newError(op, abs, ErrIO, err)
	}

	if err := atomic.Move(abs, dst); err != nil {
		if atomic.IsCrossDevice(err) {
			slog.Warn("rename crossed a filesystem boundary", "path", abs, "trash_dir", m.config.TrashDir)
		}
		m.compensate(tx, entries, err)
		return types.TrashEntry{}, newError(op, abs, ErrIO, err)
	}
	if err := tx.Transition(StateMoved); err != nil {
		return types.TrashEntry{}, newError(op, abs, ErrIO, err)
	}

	slog.Info("recycled",
		"tx", tx.ID,
		"id", entries[0].ID,
		"path", abs,
		"trash_path", dst,
		"rows", len(entries),
		"elapsed", tx.Duration())
	return entries[0], nil
}

// compensate removes the ledger rows of a recycle whose move failed. A
// failure here is only logged; the caller reports the move error.
func (m *Manager) compensate(tx *transaction, entries []types.TrashEntry, cause error) {
	ids := lo.Map(entries, func(e types.TrashEntry, _ int) int64 { return e.ID })
	if err := m.store.DeleteAll(ids); err != nil {
		slog.Error("failed to remove ledger rows after failed move",
			"tx", tx.ID, "ids", ids, "cause", cause, "error", err)
		tx.Fail(err)
		return
	}
	if err := tx.Transition(StateRolledBack); err != nil {
		slog.Debug("cannot mark transaction rolled back", "tx", tx.ID, "error", err)
	}
	slog.Warn("recycle rolled back", "tx", tx.ID, "path", tx.Path, "cause", cause)
}

// checkSafe refuses paths that must never be recycled: the filesystem root,
// "." and "..", the trash directory itself and anything inside or above it
func (m *Manager) checkSafe(arg, abs string) error {
	if unsafe, err := rimfs.IsUnsafePath(arg); err != nil || unsafe {
		return fmt.Errorf("refusing to remove %q", arg)
	}
	trashDir := m.config.TrashDir
	switch {
	case abs == trashDir:
		return fmt.Errorf("refusing to remove the trash directory")
	case isWithin(abs, trashDir):
		return fmt.Errorf("%s is already in the trash directory", abs)
	case isWithin(trashDir, abs):
		return fmt.Errorf("%s contains the trash directory", abs)
	}
	return nil
}

// freePath returns the first trash location for meta that is not occupied
func (m *Manager) freePath(meta types.Metadata) (string, error) {
	for attempt := 0; attempt < maxAttempts; attempt++ {
		p := m.paths.Path(meta, attempt)
		_, err := os.Lstat(p)
		if errors.Is(err, fs.ErrNotExist) {
			return p, nil
		}
		if err != nil {
			return "", err
		}
		slog.Debug("trash path occupied", "path", p, "attempt", attempt)
	}
	return "", fmt.Errorf("no free trash location for %s after %d attempts", meta.OriginalPath, maxAttempts)
}

// Recover moves the entry with the given id back to its original location
func (m *Manager) Recover(id int64) error {
	entry, ok, err := m.store.FindByID(id)
	if err != nil {
		return storeError("recover", strconv.FormatInt(id, 10), err)
	}
	if !ok {
		return newError("recover", strconv.FormatInt(id, 10), ErrNotFound,
			fmt.Errorf("no entry with id %d", id))
	}
	return m.recover(entry)
}

// RecoverPath recovers the most recently recycled entry that used to live at path
func (m *Manager) RecoverPath(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return newError("recover", path, ErrValidation, err)
	}
	entries, err := m.store.FindByOriginalPath(abs)
	if err != nil {
		return storeError("recover", abs, err)
	}
	if len(entries) == 0 {
		return newError("recover", abs, ErrNotFound, errors.New("no entry was recycled from this path"))
	}
	return m.recover(entries[0])
}

// RecoverTarget recovers by id when arg is a number (optionally written as
// "#12") and by original path otherwise
func (m *Manager) RecoverTarget(arg string) error {
	id, isID, err := ParseID(arg)
	if err != nil {
		return err
	}
	if isID {
		return m.Recover(id)
	}
	return m.RecoverPath(arg)
}

// ParseID reports whether arg names a ledger id. Arguments made of digits
// are ids; anything else is treated as a path. Ids must be positive.
func ParseID(arg string) (int64, bool, error) {
	s := strings.TrimSpace(arg)
	hashed := strings.HasPrefix(s, "#")
	s = strings.TrimPrefix(s, "#")

	if s == "" || strings.ContainsFunc(s, func(r rune) bool { return r < '0' || r > '9' }) {
		if hashed || strings.TrimSpace(arg) == "" {
			return 0, false, newError("recover", arg, ErrValidation, fmt.Errorf("%q is not a valid id", arg))
		}
		return 0, false, nil
	}

	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, false, newError("recover", arg, ErrValidation, fmt.Errorf("%q is not a valid id", arg))
	}
	return id, true, nil
}

func (m *Manager) recover(entry types.TrashEntry) error {
	const op = "recover"

	if _, err := os.Lstat(entry.OriginalPath); err == nil {
		return newError(op, entry.OriginalPath, ErrAlreadyExists, fs.ErrExist)
	} else if !errors.Is(err, fs.ErrNotExist) {
		return newError(op, entry.OriginalPath, ErrIO, err)
	}

	if _, err := os.Lstat(entry.TrashPath); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return newError(op, entry.TrashPath, ErrNotFound, err)
		}
		return newError(op, entry.TrashPath, ErrIO, err)
	}

	var nested []types.TrashEntry
	if entry.Metadata.IsDir {
		var err error
		nested, err = m.store.FindUnder(entry.TrashPath)
		if err != nil {
			return storeError(op, entry.TrashPath, err)
		}
	}

	if err := os.MkdirAll(filepath.Dir(entry.OriginalPath), 0o755); err != nil {
		return newError(op, entry.OriginalPath, ErrIO, err)
	}
	if err := atomic.Move(entry.TrashPath, entry.OriginalPath); err != nil {
		if atomic.IsDestinationExists(err) {
			return newError(op, entry.OriginalPath, ErrAlreadyExists, err)
		}
		return newError(op, entry.OriginalPath, ErrIO, err)
	}

	all := append(nested, entry)
	m.restoreAttributes(all, entry)

	ids := lo.Map(all, func(e types.TrashEntry, _ int) int64 { return e.ID })
	if err := m.store.DeleteAll(ids); err != nil {
		return storeError(op, entry.OriginalPath, err)
	}

	slog.Info("recovered", "id", entry.ID, "path", entry.OriginalPath, "rows", len(ids))
	return nil
}

// restoreAttributes reapplies permission bits and ownership, children before
// their parents so that read-only directories are handled last. Failures are
// logged: the files are already back in place at this point.
func (m *Manager) restoreAttributes(entries []types.TrashEntry, root types.TrashEntry) {
	byPath := make(map[string]types.TrashEntry, len(entries))
	for _, e := range entries {
		// nested rows are addressed by where they sit now, under the recovered root
		rel, err := filepath.Rel(root.TrashPath, e.TrashPath)
		if err != nil {
			continue
		}
		byPath[filepath.Join(root.OriginalPath, rel)] = e
	}

	for _, path := range OrderForDeletion(lo.Keys(byPath)) {
		e := byPath[path]
		if _, err := os.Lstat(path); err != nil {
			slog.Debug("skip restoring attributes", "path", path, "error", err)
			continue
		}
		if !e.Metadata.IsSymlink() {
			if err := os.Chmod(path, e.Metadata.FileMode()); err != nil {
				slog.Warn("failed to restore mode", "path", path, "error", err)
			}
		}
		if err := os.Lchown(path, e.Metadata.UID, e.Metadata.GID); err != nil {
			slog.Warn("failed to restore ownership", "path", path, "error", err)
		}
	}
}

// ListRecent returns the n most recently recycled entries, newest first.
// Like List it leaves out the rows describing the contents of a recycled
// directory, and the history filters may drop some of the n.
func (m *Manager) ListRecent(n int) ([]types.TrashEntry, error) {
	entries, err := m.store.Recent(n, m.config.TrashDir)
	if err != nil {
		return nil, storeError("list", "", err)
	}
	return Filter(entries, FilterOptions{
		Include: m.config.History.Include,
		Exclude: m.config.History.Exclude,
	}), nil
}

// List returns the entries that were recycled as a whole (not the rows
// describing the contents of a recycled directory), after applying the
// history filters of the configuration
func (m *Manager) List() ([]types.TrashEntry, error) {
	entries, err := m.store.List()
	if err != nil {
		return nil, storeError("list", "", err)
	}
	entries = lo.Filter(entries, func(e types.TrashEntry, _ int) bool {
		return filepath.Dir(e.TrashPath) == m.config.TrashDir
	})
	return Filter(entries, FilterOptions{
		Include: m.config.History.Include,
		Exclude: m.config.History.Exclude,
	}), nil
}

func isEmptyDir(path string) (bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return false, err
	}
	defer f.Close()
	names, err := f.Readdirnames(1)
	if len(names) > 0 {
		return false, nil
	}
	if err != nil && !errors.Is(err, io.EOF) {
		return false, err
	}
	return true, nil
}

// isWithin reports whether path lies strictly beneath dir
func isWithin(path, dir string) bool {
	return rimfs.IsWithin(path, dir)
}
