// Package snapshot captures the metadata of a file right before it is recycled:
// its size, content hash, timestamps, permission bits and ownership.
package snapshot

import (
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/babarot/rim/internal/core/types"
	"github.com/zeebo/blake3"
)

// ErrNotFound is returned when the path to snapshot does not exist
var ErrNotFound = errors.New("no such file or directory")

// Snapshotter produces metadata snapshots of paths on disk
type Snapshotter interface {
	// Snapshot returns the metadata of path itself
	Snapshot(path string) (types.Metadata, error)

	// Tree returns the metadata of path and of everything beneath it.
	// Parents always come before their children.
	Tree(path string) ([]types.Metadata, error)
}

// Local snapshots files on the local filesystem
type Local struct{}

// New returns a Snapshotter for the local filesystem
func New() *Local {
	return &Local{}
}

func (l *Local) Snapshot(path string) (types.Metadata, error) {
	return l.walk(path, nil)
}

func (l *Local) Tree(path string) ([]types.Metadata, error) {
	var out []types.Metadata
	if _, err := l.walk(path, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// walk snapshots path. Directories are hashed over the sorted list of their
// children so that two trees with the same layout and contents get the same
// hash. When out is not nil every visited node is appended to it.
func (l *Local) walk(path string, out *[]types.Metadata) (types.Metadata, error) {
	info, err := os.Lstat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return types.Metadata{}, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return types.Metadata{}, err
	}

	meta := fromFileInfo(path, info)

	switch {
	case info.Mode()&fs.ModeSymlink != 0:
		target, err := os.Readlink(path)
		if err != nil {
			return types.Metadata{}, fmt.Errorf("read link %s: %w", path, err)
		}
		meta.LinkTarget = target
		meta.ContentHash = hashString(target)

	case info.IsDir():
		idx := -1
		if out != nil {
			idx = len(*out)
			*out = append(*out, types.Metadata{})
		}
		entries, err := os.ReadDir(path)
		if err != nil {
			return types.Metadata{}, fmt.Errorf("read dir %s: %w", path, err)
		}
		h := blake3.New()
		var size int64
		for _, entry := range entries {
			child, err := l.walk(filepath.Join(path, entry.Name()), out)
			if err != nil {
				return types.Metadata{}, err
			}
			size += child.FileSize
			fmt.Fprintf(h, "%s\x00%s\n", entry.Name(), child.ContentHash)
		}
		meta.FileSize = size
		meta.ContentHash = hex.EncodeToString(h.Sum(nil))
		if idx >= 0 {
			(*out)[idx] = meta
		}
		return meta, nil

	case info.Mode().IsRegular():
		sum, err := hashFile(path)
		if err != nil {
			return types.Metadata{}, err
		}
		meta.ContentHash = sum

	default:
		// fifos, sockets and devices have no content to hash
		slog.Debug("snapshot of special file", "path", path, "mode", info.Mode().String())
		meta.ContentHash = hashString(info.Mode().Type().String())
	}

	if out != nil {
		*out = append(*out, meta)
	}
	return meta, nil
}

func fromFileInfo(path string, info fs.FileInfo) types.Metadata {
	st := statOf(info)
	meta := types.Metadata{
		OriginalPath: path,
		Mtime:        info.ModTime().Unix(),
		Atime:        st.atime,
		UnixMode:     types.UnixMode(info.Mode()),
		UID:          st.uid,
		GID:          st.gid,
		IsDir:        info.IsDir(),
	}
	if info.Mode().IsRegular() {
		meta.FileSize = info.Size()
	}
	return meta
}

// hashFile returns the hex encoded blake3 digest of the file contents
func hashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open file %s: %w", path, err)
	}
	defer f.Close()

	h := blake3.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("read file %s: %w", path, err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

func hashString(s string) string {
	sum := blake3.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}
