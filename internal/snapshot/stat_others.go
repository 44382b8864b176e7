//go:build !linux && !darwin

package snapshot

import "io/fs"

type statInfo struct {
	atime    int64
	uid, gid int
}

// statOf falls back to the modification time when the platform does not
// expose access times or ownership
func statOf(info fs.FileInfo) statInfo {
	return statInfo{atime: info.ModTime().Unix()}
}
