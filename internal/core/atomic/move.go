package atomic

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"syscall"
)

// Move renames src to dst. It never falls back to copying: a move between
// filesystems fails with ErrCrossDeviceMove and leaves src untouched.
// The parent directory of dst must already exist.
func Move(src, dst string) error {
	if err := validatePaths(src, dst); err != nil {
		return err
	}

	if err := os.Rename(src, dst); err != nil {
		if errors.Is(err, syscall.EXDEV) {
			err = fmt.Errorf("%w: %w", ErrCrossDeviceMove, err)
		}
		return &MoveError{
			Op:  "rename",
			Src: src,
			Dst: dst,
			Err: err,
		}
	}
	return nil
}

// validatePaths performs basic path validation
func validatePaths(src, dst string) error {
	if src == "" || dst == "" {
		return ErrInvalidPath
	}

	if _, err := os.Lstat(src); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return &MoveError{Op: "stat", Src: src, Dst: dst, Err: fmt.Errorf("%w: %w", ErrSourceNotFound, err)}
		}
		return &MoveError{Op: "stat", Src: src, Dst: dst, Err: err}
	}

	if _, err := os.Lstat(dst); err == nil {
		return &MoveError{Op: "stat", Src: src, Dst: dst, Err: ErrDestinationExists}
	}
	return nil
}
