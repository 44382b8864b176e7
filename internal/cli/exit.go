package cli

import (
	"errors"

	"github.com/babarot/rim/internal/trash"
	"github.com/jessevdk/go-flags"
)

const (
	ExitCodeOK int = iota
	ExitCodeError
	ExitCodeNotFound
	ExitCodeAlreadyExists
	ExitCodeValidation
)

// ExitCode maps an error returned by Run to the process exit status
func ExitCode(err error) int {
	var flagErr *flags.Error
	switch {
	case err == nil:
		return ExitCodeOK
	case errors.As(err, &flagErr):
		return ExitCodeValidation
	case errors.Is(err, ErrTooFewArguments):
		return ExitCodeValidation
	case trash.IsNotFound(err):
		return ExitCodeNotFound
	case trash.IsAlreadyExists(err):
		return ExitCodeAlreadyExists
	case trash.IsValidation(err):
		return ExitCodeValidation
	default:
		return ExitCodeError
	}
}
