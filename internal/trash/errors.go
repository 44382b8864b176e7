package trash

import (
	"errors"

	"github.com/babarot/rim/internal/ledger"
)

// Error kinds returned by the Manager. Every error it returns matches exactly
// one of them with errors.Is.
var (
	// ErrNotFound is returned when an entry or a path does not exist
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists is returned when the original location of an entry is occupied
	ErrAlreadyExists = errors.New("already exists")

	// ErrIO is returned when a filesystem operation fails
	ErrIO = errors.New("i/o failure")

	// ErrPersistence is returned when the ledger cannot be read or written
	ErrPersistence = ledger.ErrPersistence

	// ErrValidation is returned for arguments that cannot be acted upon
	ErrValidation = errors.New("invalid argument")
)

// Error wraps a failure with the operation and path it happened on
type Error struct {
	// Op is the operation that failed (e.g., "recycle", "recover", "purge")
	Op string

	// Path is the path of the file that caused the error
	Path string

	// Kind is one of the sentinel errors above
	Kind error

	// Err is the underlying error
	Err error
}

// Error implements the error interface
func (e *Error) Error() string {
	msg := e.Op
	if e.Path != "" {
		msg += " " + e.Path
	}
	if e.Err == nil {
		return msg + ": " + e.Kind.Error()
	}
	return msg + ": " + e.Err.Error()
}

// Unwrap exposes both the kind and the cause to errors.Is and errors.As
func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

func newError(op, path string, kind, err error) error {
	return &Error{
		Op:   op,
		Path: path,
		Kind: kind,
		Err:  err,
	}
}

// storeError classifies a ledger failure
func storeError(op, path string, err error) error {
	return newError(op, path, ErrPersistence, err)
}

// IsNotFound returns true if the error is ErrNotFound
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsAlreadyExists returns true if the error is ErrAlreadyExists
func IsAlreadyExists(err error) bool {
	return errors.Is(err, ErrAlreadyExists)
}

// IsValidation returns true if the error is ErrValidation
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation)
}
