//go:build unix

package atomic

import (
	"fmt"
	"os"
	"syscall"
)

// SameDevice reports whether src and the existing directory dstDir reside on
// the same filesystem, i.e. whether a rename between them can succeed
func SameDevice(src, dstDir string) (bool, error) {
	srcInfo, err := os.Lstat(src)
	if err != nil {
		return false, fmt.Errorf("failed to get source file stats: %w", err)
	}

	dstInfo, err := os.Stat(dstDir)
	if err != nil {
		return false, fmt.Errorf("failed to get destination directory stats: %w", err)
	}

	srcSys, ok := srcInfo.Sys().(*syscall.Stat_t)
	if !ok {
		return false, fmt.Errorf("failed to get source system info")
	}

	dstSys, ok := dstInfo.Sys().(*syscall.Stat_t)
	if !ok {
		return false, fmt.Errorf("failed to get destination system info")
	}

	return uint64(srcSys.Dev) == uint64(dstSys.Dev), nil
}
