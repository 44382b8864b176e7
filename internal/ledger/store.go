// Package ledger persists the trash entries of rim in a SQLite database.
//
// Every call goes to the database file; nothing is cached in memory. The store
// assumes a single active process and relies on SQLite's own file locking if
// another instance opens the same ledger.
package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/babarot/rim/internal/core/types"
	_ "modernc.org/sqlite"
)

// ErrPersistence is returned when the ledger cannot be read or written, or
// when a stored row is malformed
var ErrPersistence = errors.New("ledger persistence failure")

// Store is an owned handle on the ledger database
type Store struct {
	db    *sql.DB
	path  string
	ttl   time.Duration
	runID string
	now   func() time.Time
}

// Record is the input of a single row insert
type Record struct {
	Metadata  types.Metadata
	TrashPath string
}

// Option configures a Store
type Option func(*Store)

// WithClock replaces the clock used for created_at and expiration
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// WithRunID tags every row created through the store with the given run id
func WithRunID(id string) Option {
	return func(s *Store) {
		s.runID = id
	}
}

// Open opens (creating if necessary) the ledger at path. New entries expire
// ttl after they are created.
func Open(path string, ttl time.Duration, opts ...Option) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("create ledger directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, wrap("open", err)
	}
	// one connection keeps the pragmas in effect and serializes writers
	db.SetMaxOpenConns(1)

	s := &Store{
		db:   db,
		path: path,
		ttl:  ttl,
		now:  time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}

	slog.Debug("ledger opened", "path", path, "ttl", ttl, "schema", schemaVersion)
	return s, nil
}

func (s *Store) migrate() error {
	for _, stmt := range schema {
		if _, err := s.db.Exec(stmt); err != nil {
			return wrap("migrate", err)
		}
	}
	return nil
}

// Close releases the database handle
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the location of the database file
func (s *Store) Path() string {
	return s.path
}

// Create inserts a new entry for meta stored at trashPath and returns it with
// its assigned id
func (s *Store) Create(meta types.Metadata, trashPath string) (types.TrashEntry, error) {
	entries, err := s.CreateAll([]Record{{Metadata: meta, TrashPath: trashPath}})
	if err != nil {
		return types.TrashEntry{}, err
	}
	return entries[0], nil
}

// CreateAll inserts all records in one transaction. They share the same
// creation time and therefore the same expiration.
func (s *Store) CreateAll(records []Record) ([]types.TrashEntry, error) {
	if len(records) == 0 {
		return nil, nil
	}

	now := s.now()
	createdAt := now.Unix()
	expiration := now.Add(s.ttl).Unix()

	tx, err := s.db.BeginTx(context.Background(), nil)
	if err != nil {
		return nil, wrap("begin", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(insertEntry)
	if err != nil {
		return nil, wrap("prepare insert", err)
	}
	defer stmt.Close()

	entries := make([]types.TrashEntry, 0, len(records))
	for _, r := range records {
		m := r.Metadata
		res, err := stmt.Exec(
			m.OriginalPath,
			r.TrashPath,
			m.IsDir,
			nullString(m.LinkTarget),
			m.FileSize,
			m.ContentHash,
			m.Mtime,
			m.Atime,
			int64(m.UnixMode),
			m.UID,
			m.GID,
			createdAt,
			expiration,
			s.runID,
		)
		if err != nil {
			return nil, wrap("insert", err)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return nil, wrap("insert", err)
		}
		if affected == 0 {
			return nil, fmt.Errorf("insert %s: %w: no rows affected", m.OriginalPath, ErrPersistence)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return nil, wrap("insert", err)
		}
		entries = append(entries, types.TrashEntry{
			ID:           id,
			OriginalPath: m.OriginalPath,
			TrashPath:    r.TrashPath,
			Metadata:     m,
			CreatedAt:    createdAt,
			Expiration:   expiration,
			RunID:        s.runID,
		})
	}

	if err := tx.Commit(); err != nil {
		return nil, wrap("commit", err)
	}
	return entries, nil
}

// Delete removes the entry with the given id. Deleting an id that does not
// exist is not an error.
func (s *Store) Delete(id int64) error {
	if _, err := s.db.Exec(`DELETE FROM trash_entry WHERE id = ?`, id); err != nil {
		return wrap("delete", err)
	}
	return nil
}

// DeleteAll removes all given ids in one transaction
func (s *Store) DeleteAll(ids []int64) error {
	if len(ids) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(context.Background(), nil)
	if err != nil {
		return wrap("begin", err)
	}
	defer tx.Rollback()

	for _, id := range ids {
		if _, err := tx.Exec(`DELETE FROM trash_entry WHERE id = ?`, id); err != nil {
			return wrap("delete", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return wrap("commit", err)
	}
	return nil
}

// FindByID looks up a single entry. The boolean is false when no entry has
// that id.
func (s *Store) FindByID(id int64) (types.TrashEntry, bool, error) {
	row := s.db.QueryRow(`SELECT `+entryColumns+` FROM trash_entry WHERE id = ?`, id)
	entry, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return types.TrashEntry{}, false, nil
	}
	if err != nil {
		return types.TrashEntry{}, false, err
	}
	return entry, true, nil
}

// FindByOriginalPath returns the entries recycled from path, newest first
func (s *Store) FindByOriginalPath(path string) ([]types.TrashEntry, error) {
	return s.query(`SELECT `+entryColumns+` FROM trash_entry
		WHERE original_path = ?
		ORDER BY created_at DESC, id DESC`, path)
}

// FindExpired returns every entry whose expiration is strictly before now
func (s *Store) FindExpired(now time.Time) ([]types.TrashEntry, error) {
	return s.query(`SELECT `+entryColumns+` FROM trash_entry
		WHERE expiration < ?
		ORDER BY trash_path DESC`, now.Unix())
}

// FindUnder returns the entries whose trash path lies strictly beneath dir.
// The prefix is compared byte for byte, so neither case folding nor LIKE
// wildcards in dir widen the match.
func (s *Store) FindUnder(dir string) ([]types.TrashEntry, error) {
	prefix := strings.TrimSuffix(dir, string(filepath.Separator)) + string(filepath.Separator)
	return s.query(`SELECT `+entryColumns+` FROM trash_entry
		WHERE substr(trash_path, 1, length(?)) = ?
		ORDER BY trash_path`, prefix, prefix)
}

// Recent returns the n most recently created entries, newest first. A
// non-empty parent keeps only the entries stored directly inside it.
func (s *Store) Recent(n int, parent string) ([]types.TrashEntry, error) {
	if n <= 0 {
		return []types.TrashEntry{}, nil
	}
	if parent == "" {
		return s.query(`SELECT `+entryColumns+` FROM trash_entry
			ORDER BY created_at DESC, id DESC
			LIMIT ?`, n)
	}
	sep := string(filepath.Separator)
	prefix := strings.TrimSuffix(parent, sep) + sep
	return s.query(`SELECT `+entryColumns+` FROM trash_entry
		WHERE substr(trash_path, 1, length(?)) = ?
		  AND instr(substr(trash_path, length(?) + 1), ?) = 0
		ORDER BY created_at DESC, id DESC
		LIMIT ?`, prefix, prefix, prefix, sep, n)
}

// List returns every entry, newest first
func (s *Store) List() ([]types.TrashEntry, error) {
	return s.query(`SELECT ` + entryColumns + ` FROM trash_entry
		ORDER BY created_at DESC, id DESC`)
}

func (s *Store) query(q string, args ...any) ([]types.TrashEntry, error) {
	rows, err := s.db.Query(q, args...)
	if err != nil {
		return nil, wrap("query", err)
	}
	defer rows.Close()

	entries := []types.TrashEntry{}
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, wrap("query", err)
	}
	return entries, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(row scanner) (types.TrashEntry, error) {
	var (
		e          types.TrashEntry
		linkTarget sql.NullString
		mode       int64
	)
	err := row.Scan(
		&e.ID,
		&e.OriginalPath,
		&e.TrashPath,
		&e.Metadata.IsDir,
		&linkTarget,
		&e.Metadata.FileSize,
		&e.Metadata.ContentHash,
		&e.Metadata.Mtime,
		&e.Metadata.Atime,
		&mode,
		&e.Metadata.UID,
		&e.Metadata.GID,
		&e.CreatedAt,
		&e.Expiration,
		&e.RunID,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return e, err
	}
	if err != nil {
		return e, wrap("scan", err)
	}

	if mode < 0 || mode > 0o7777 {
		return e, malformed(e.ID, "unix_mode %o out of range", mode)
	}
	e.Metadata.UnixMode = uint32(mode)
	e.Metadata.LinkTarget = linkTarget.String
	e.Metadata.OriginalPath = e.OriginalPath

	switch {
	case !filepath.IsAbs(e.OriginalPath):
		return e, malformed(e.ID, "original_path %q is not absolute", e.OriginalPath)
	case !filepath.IsAbs(e.TrashPath):
		return e, malformed(e.ID, "trash_path %q is not absolute", e.TrashPath)
	case e.Metadata.FileSize < 0:
		return e, malformed(e.ID, "negative file_size %d", e.Metadata.FileSize)
	case e.Metadata.UID < 0 || e.Metadata.GID < 0:
		return e, malformed(e.ID, "negative owner %d:%d", e.Metadata.UID, e.Metadata.GID)
	}
	return e, nil
}

func malformed(id int64, format string, args ...any) error {
	return fmt.Errorf("row %d: %w: %s", id, ErrPersistence, fmt.Sprintf(format, args...))
}

func wrap(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrPersistence, err)
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
