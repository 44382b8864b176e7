package trash

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// TransactionState represents the progress of a recycle operation
type TransactionState string

const (
	// StateUnrecorded is the initial state: nothing has been written yet
	StateUnrecorded TransactionState = "unrecorded"

	// StateRecorded indicates the ledger rows were inserted but the file has not moved
	StateRecorded TransactionState = "recorded"

	// StateMoved indicates the file now lives in the trash directory
	StateMoved TransactionState = "moved"

	// StateRolledBack indicates the move failed and the ledger rows were removed
	StateRolledBack TransactionState = "rolled_back"

	// StateFailed indicates the operation failed and could not be compensated
	StateFailed TransactionState = "failed"
)

var (
	// ErrInvalidStateTransition is returned when an invalid state transition is attempted
	ErrInvalidStateTransition = errors.New("invalid state transition")

	// ErrTransactionCompleted is returned when attempting to modify a completed transaction
	ErrTransactionCompleted = errors.New("transaction already completed")
)

var allowedTransitions = map[TransactionState][]TransactionState{
	StateUnrecorded: {StateRecorded, StateFailed},
	StateRecorded:   {StateMoved, StateRolledBack, StateFailed},
	StateMoved:      {},
	StateRolledBack: {},
	StateFailed:     {},
}

func (s TransactionState) canTransitionTo(target TransactionState) bool {
	for _, allowed := range allowedTransitions[s] {
		if allowed == target {
			return true
		}
	}
	return false
}

// IsTerminal returns true if the state is a terminal state
func (s TransactionState) IsTerminal() bool {
	switch s {
	case StateMoved, StateRolledBack, StateFailed:
		return true
	default:
		return false
	}
}

// String returns the string representation of the state
func (s TransactionState) String() string {
	return string(s)
}

// transaction tracks a single recycle from the ledger insert to the move
type transaction struct {
	ID        string
	Path      string
	State     TransactionState
	StartTime time.Time
	Error     string
}

func newTransaction(path string) *transaction {
	return &transaction{
		ID:        uuid.New().String(),
		Path:      path,
		State:     StateUnrecorded,
		StartTime: time.Now(),
	}
}

// Transition attempts to move the transaction to a new state
func (tx *transaction) Transition(target TransactionState) error {
	if tx.State.IsTerminal() {
		return ErrTransactionCompleted
	}
	if !tx.State.canTransitionTo(target) {
		return fmt.Errorf("%w: cannot transition from %s to %s",
			ErrInvalidStateTransition, tx.State, target)
	}
	slog.Debug("transaction state changed",
		"tx", tx.ID, "path", tx.Path, "from", tx.State, "to", target)
	tx.State = target
	return nil
}

// Fail records err and moves the transaction into the failed state
func (tx *transaction) Fail(err error) {
	tx.Error = err.Error()
	if terr := tx.Transition(StateFailed); terr != nil {
		slog.Debug("cannot mark transaction failed", "tx", tx.ID, "error", terr)
	}
}

// Duration returns the time elapsed since the transaction started
func (tx *transaction) Duration() time.Duration {
	return time.Since(tx.StartTime)
}
