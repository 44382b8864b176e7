// Package fs holds path checks shared by the recycle and recover paths.
package fs

import (
	"path/filepath"
	"strings"
)

// IsUnsafePath reports whether path names something that must never be
// recycled: ".", "..", the filesystem root or a UNC-like "//" prefix.
// The raw argument is checked before cleaning so "dir/.." is caught too.
func IsUnsafePath(path string) (bool, error) {
	if path == "" {
		return true, nil
	}
	switch filepath.Base(path) {
	case ".", "..":
		return true, nil
	}
	if strings.HasPrefix(path, "//") {
		return true, nil
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return false, err
	}
	return abs == filepath.VolumeName(abs)+string(filepath.Separator), nil
}

// IsWithin reports whether path is strictly below dir. Both must be clean.
func IsWithin(path, dir string) bool {
	rel, err := filepath.Rel(dir, path)
	if err != nil {
		return false
	}
	return rel != "." && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}
