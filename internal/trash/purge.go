package trash

import (
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"syscall"
	"time"

	"github.com/babarot/rim/internal/core/types"
	"github.com/samber/lo"
)

// PurgeReport summarizes a purge run
type PurgeReport struct {
	// Removed is the number of ledger entries whose files were deleted
	Removed int

	// Bytes is the total size of the removed regular files
	Bytes int64

	// Skipped is the number of expired entries kept because their
	// directory still holds active entries
	Skipped int
}

// OrderForDeletion sorts paths so that every path comes after all the paths
// nested beneath it. Only the given paths are returned; their ancestors are
// used for ordering but never emitted.
func OrderForDeletion(paths []string) []string {
	targets := make(map[string]bool, len(paths))
	for _, p := range paths {
		targets[filepath.Clean(p)] = true
	}

	// every ancestor (up to but excluding the root) points at each target below it
	children := make(map[string][]string)
	nodes := make(map[string]bool)
	for target := range targets {
		nodes[target] = true
		for dir := filepath.Dir(target); dir != filepath.Dir(dir); dir = filepath.Dir(dir) {
			nodes[dir] = true
			children[dir] = append(children[dir], target)
		}
	}
	for _, c := range children {
		slices.Sort(c)
	}

	order := make([]string, 0, len(targets))
	visited := make(map[string]bool, len(nodes))
	var visit func(string)
	visit = func(node string) {
		if visited[node] {
			return
		}
		visited[node] = true
		for _, child := range children[node] {
			visit(child)
		}
		if targets[node] {
			order = append(order, node)
		}
	}

	keys := lo.Keys(nodes)
	slices.Sort(keys)
	for _, node := range keys {
		visit(node)
	}
	return order
}

// RunMaintenance purges every entry that has expired by now
func (m *Manager) RunMaintenance() (PurgeReport, error) {
	return m.Purge(m.now())
}

// Purge permanently deletes the files of all entries that expired before now,
// children before their parents, and removes their ledger rows. Each row is
// dropped right after its path is gone so an interrupted purge can simply be
// run again.
func (m *Manager) Purge(now time.Time) (PurgeReport, error) {
	const op = "purge"
	var report PurgeReport

	expired, err := m.store.FindExpired(now)
	if err != nil {
		return report, storeError(op, "", err)
	}
	if len(expired) == 0 {
		slog.Debug("nothing to purge", "now", now)
		return report, nil
	}

	rows := lo.GroupBy(expired, func(e types.TrashEntry) string {
		return filepath.Clean(e.TrashPath)
	})

	for _, path := range OrderForDeletion(lo.Keys(rows)) {
		group := rows[path]

		info, err := os.Lstat(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
			slog.Debug("already gone", "path", path)
		case err != nil:
			return report, newError(op, path, ErrIO, err)
		case info.IsDir():
			active, err := m.hasActiveEntries(path, now)
			if err != nil {
				return report, storeError(op, path, err)
			}
			if active {
				slog.Info("skip directory holding active entries", "path", path)
				report.Skipped += len(group)
				continue
			}
			if err := os.Remove(path); err != nil {
				if errors.Is(err, syscall.ENOTEMPTY) || errors.Is(err, syscall.EEXIST) {
					slog.Warn("skip directory with untracked contents", "path", path)
					report.Skipped += len(group)
					continue
				}
				return report, newError(op, path, ErrIO, err)
			}
		default:
			if err := os.Remove(path); err != nil {
				return report, newError(op, path, ErrIO, err)
			}
		}

		ids := lo.Map(group, func(e types.TrashEntry, _ int) int64 { return e.ID })
		if err := m.store.DeleteAll(ids); err != nil {
			return report, storeError(op, path, err)
		}
		report.Removed += len(group)
		for _, e := range group {
			if !e.Metadata.IsDir {
				report.Bytes += e.Metadata.FileSize
			}
		}
		slog.Debug("purged", "path", path, "ids", ids)
	}

	slog.Info("purge finished", "removed", report.Removed, "bytes", report.Bytes, "skipped", report.Skipped)
	return report, nil
}

func (m *Manager) hasActiveEntries(dir string, now time.Time) (bool, error) {
	nested, err := m.store.FindUnder(dir)
	if err != nil {
		return false, err
	}
	return lo.SomeBy(nested, func(e types.TrashEntry) bool {
		return !e.IsExpired(now)
	}), nil
}
