package types

import (
	"io/fs"
	"path/filepath"
	"time"
)

const (
	modeSetuid = 0o4000
	modeSetgid = 0o2000
	modeSticky = 0o1000
)

// Metadata is an immutable snapshot of a file taken right before it is recycled
type Metadata struct {
	OriginalPath string `json:"original_path"`
	FileSize     int64  `json:"file_size"`
	ContentHash  string `json:"content_hash"`
	Mtime        int64  `json:"mtime"`
	Atime        int64  `json:"atime"`
	UnixMode     uint32 `json:"unix_mode"`
	UID          int    `json:"uid"`
	GID          int    `json:"gid"`
	IsDir        bool   `json:"is_dir"`
	LinkTarget   string `json:"link_target,omitempty"`
}

// IsSymlink reports whether the snapshot was taken of a symbolic link
func (m Metadata) IsSymlink() bool {
	return m.LinkTarget != ""
}

// FileMode converts the stored unix permission bits back into an fs.FileMode
// suitable for os.Chmod
func (m Metadata) FileMode() fs.FileMode {
	mode := fs.FileMode(m.UnixMode & 0o777)
	if m.UnixMode&modeSetuid != 0 {
		mode |= fs.ModeSetuid
	}
	if m.UnixMode&modeSetgid != 0 {
		mode |= fs.ModeSetgid
	}
	if m.UnixMode&modeSticky != 0 {
		mode |= fs.ModeSticky
	}
	return mode
}

// UnixMode converts an fs.FileMode into classic unix permission bits
// (rwx for user, group and other plus setuid, setgid and sticky)
func UnixMode(mode fs.FileMode) uint32 {
	bits := uint32(mode.Perm())
	if mode&fs.ModeSetuid != 0 {
		bits |= modeSetuid
	}
	if mode&fs.ModeSetgid != 0 {
		bits |= modeSetgid
	}
	if mode&fs.ModeSticky != 0 {
		bits |= modeSticky
	}
	return bits
}

// TrashEntry is a single row of the ledger
type TrashEntry struct {
	ID           int64    `json:"id"`
	OriginalPath string   `json:"original_path"`
	TrashPath    string   `json:"trash_path"`
	Metadata     Metadata `json:"metadata"`
	CreatedAt    int64    `json:"created_at"`
	Expiration   int64    `json:"expiration"`
	RunID        string   `json:"run_id"`
}

// Name returns the base name the entry had before it was recycled
func (e TrashEntry) Name() string {
	return filepath.Base(e.OriginalPath)
}

// DeletedAt returns when the entry was recorded
func (e TrashEntry) DeletedAt() time.Time {
	return time.Unix(e.CreatedAt, 0)
}

// ExpiresAt returns when the entry becomes eligible for purging
func (e TrashEntry) ExpiresAt() time.Time {
	return time.Unix(e.Expiration, 0)
}

// IsExpired reports whether the entry expired strictly before now
func (e TrashEntry) IsExpired(now time.Time) bool {
	return e.Expiration < now.Unix()
}

// The following methods satisfy trash.Filterable

func (e TrashEntry) GetName() string         { return e.Name() }
func (e TrashEntry) GetPath() string         { return e.TrashPath }
func (e TrashEntry) GetSize() int64          { return e.Metadata.FileSize }
func (e TrashEntry) GetDeletedAt() time.Time { return e.DeletedAt() }
