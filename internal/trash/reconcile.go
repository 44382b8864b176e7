package trash

import (
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"

	"github.com/babarot/rim/internal/core/types"
	"github.com/samber/lo"
)

// Report is the result of comparing the ledger with the trash directory
type Report struct {
	// Dangling are ledger entries whose trash path no longer exists
	Dangling []types.TrashEntry

	// Strays are files at the top of the trash directory that no entry refers to
	Strays []string
}

// Clean reports whether the ledger and the trash directory agree
func (r Report) Clean() bool {
	return len(r.Dangling) == 0 && len(r.Strays) == 0
}

// Reconcile compares the ledger with the contents of the trash directory. It
// only reports; nothing is changed.
func (m *Manager) Reconcile() (Report, error) {
	const op = "reconcile"
	var report Report

	entries, err := m.store.List()
	if err != nil {
		return report, storeError(op, "", err)
	}

	known := make(map[string]bool, len(entries))
	for _, e := range entries {
		known[filepath.Clean(e.TrashPath)] = true
		if _, err := os.Lstat(e.TrashPath); err != nil {
			if !errors.Is(err, fs.ErrNotExist) {
				return report, newError(op, e.TrashPath, ErrIO, err)
			}
			report.Dangling = append(report.Dangling, e)
		}
	}

	dirents, err := os.ReadDir(m.config.TrashDir)
	if err != nil {
		return report, newError(op, m.config.TrashDir, ErrIO, err)
	}
	ledgerFiles := m.ledgerFiles()
	for _, d := range dirents {
		path := filepath.Join(m.config.TrashDir, d.Name())
		if known[path] || slices.Contains(ledgerFiles, path) {
			continue
		}
		report.Strays = append(report.Strays, path)
	}

	slog.Debug("reconciled", "dangling", len(report.Dangling), "strays", len(report.Strays))
	return report, nil
}

// PruneDangling deletes the ledger rows listed as dangling in report and
// returns how many were removed
func (m *Manager) PruneDangling(report Report) (int, error) {
	ids := lo.Map(report.Dangling, func(e types.TrashEntry, _ int) int64 { return e.ID })
	if len(ids) == 0 {
		return 0, nil
	}
	if err := m.store.DeleteAll(ids); err != nil {
		return 0, storeError("prune", "", err)
	}
	slog.Info("pruned dangling entries", "count", len(ids))
	return len(ids), nil
}

// ledgerFiles lists the database file and its SQLite side files
func (m *Manager) ledgerFiles() []string {
	db := filepath.Clean(m.store.Path())
	return []string{db, db + "-wal", db + "-shm", db + "-journal"}
}
