package atomic

import (
	"errors"
	"fmt"
)

var (
	ErrDestinationExists = errors.New("destination already exists")
	ErrSourceNotFound    = errors.New("source file not found")
	ErrInvalidPath       = errors.New("invalid path specified")

	// ErrCrossDeviceMove is returned instead of copying when src and dst are
	// on different filesystems
	ErrCrossDeviceMove = errors.New("cross-device move operation")
)

// MoveError records which step of a move failed and on which paths
type MoveError struct {
	Op  string
	Src string
	Dst string
	Err error
}

func (e *MoveError) Error() string {
	if e.Op == "stat" && errors.Is(e.Err, ErrSourceNotFound) {
		return fmt.Sprintf("%s %q: %v", e.Op, e.Src, e.Err)
	}
	return fmt.Sprintf("%s %q to %q: %v", e.Op, e.Src, e.Dst, e.Err)
}

func (e *MoveError) Unwrap() error { return e.Err }

func IsCrossDevice(err error) bool { return errors.Is(err, ErrCrossDeviceMove) }

func IsDestinationExists(err error) bool { return errors.Is(err, ErrDestinationExists) }
