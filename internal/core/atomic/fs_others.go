//go:build !unix

package atomic

import (
	"fmt"
	"path/filepath"
	"strings"
)

// SameDevice compares volume names since device numbers are unavailable
func SameDevice(src, dstDir string) (bool, error) {
	srcVolume := filepath.VolumeName(src)
	dstVolume := filepath.VolumeName(dstDir)
	if srcVolume == "" || dstVolume == "" {
		return false, fmt.Errorf("failed to determine volume name from file paths")
	}
	return strings.EqualFold(srcVolume, dstVolume), nil
}
