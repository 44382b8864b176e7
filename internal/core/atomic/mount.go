package atomic

import (
	"fmt"
	"log/slog"
	"path/filepath"

	rimfs "github.com/babarot/rim/internal/utils/fs"
	"github.com/moby/sys/mountinfo"
)

// MountPoint returns the deepest mount point containing path. It falls back
// to "/" when the mount table lists no parent of path.
func MountPoint(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("failed to get absolute path: %w", err)
	}

	mounts, err := mountinfo.GetMounts(func(info *mountinfo.Info) (skip, stop bool) {
		return info.Mountpoint != abs && !rimfs.IsWithin(abs, info.Mountpoint), false
	})
	if err != nil {
		return "", fmt.Errorf("failed to get mount info: %w", err)
	}

	mountpoint := "/"
	for _, m := range mounts {
		if len(m.Mountpoint) > len(mountpoint) {
			mountpoint = m.Mountpoint
		}
	}
	slog.Debug("found mount point", "path", abs, "mountpoint", mountpoint)
	return mountpoint, nil
}

// CrossDeviceError describes a refused move between two filesystems
func CrossDeviceError(src, dstDir string) error {
	mountOf := func(p string) string {
		mp, err := MountPoint(p)
		if err != nil {
			return "?"
		}
		return mp
	}
	return &MoveError{
		Op:  "rename",
		Src: src,
		Dst: dstDir,
		Err: fmt.Errorf("%w: %s is on %s but the trash directory is on %s",
			ErrCrossDeviceMove, src, mountOf(src), mountOf(dstDir)),
	}
}
