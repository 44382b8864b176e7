//go:build darwin

package snapshot

import (
	"io/fs"
	"syscall"
)

type statInfo struct {
	atime    int64
	uid, gid int
}

func statOf(info fs.FileInfo) statInfo {
	st, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return statInfo{atime: info.ModTime().Unix()}
	}
	return statInfo{
		atime: st.Atimespec.Sec,
		uid:   int(st.Uid),
		gid:   int(st.Gid),
	}
}
