package store

import (
	"errors"
	"fmt"
)

// Sentinel errors returned by every Repository implementation.
var (
	// ErrNotFound means the requested row does not exist. The per-entity
	// variants below wrap it.
	ErrNotFound = errors.New("entity not found")

	// ErrDuplicate means a unique key is already taken.
	ErrDuplicate = errors.New("entity already exists")

	// ErrInvalidEntity means the row was rejected: a failed validation or a
	// foreign key, check or not-null constraint.
	ErrInvalidEntity = errors.New("invalid entity")

	// ErrTransactionFailed means a transaction could not be committed.
	ErrTransactionFailed = errors.New("transaction failed")

	// ErrTaskAlreadyCompleted means a completion found the task already
	// completed.
	ErrTaskAlreadyCompleted = errors.New("task already completed")

	ErrTaskNotFound         = fmt.Errorf("%w: task", ErrNotFound)
	ErrProjectNotFound      = fmt.Errorf("%w: project", ErrNotFound)
	ErrStatusNotFound       = fmt.Errorf("%w: project status", ErrNotFound)
	ErrSectionNotFound      = fmt.Errorf("%w: project section", ErrNotFound)
	ErrRecurrenceNotFound   = fmt.Errorf("%w: recurrence", ErrNotFound)
	ErrNotificationNotFound = fmt.Errorf("%w: notification", ErrNotFound)
	ErrJobRunNotFound       = fmt.Errorf("%w: job run", ErrNotFound)
)

// IsNotFoundError reports whether err wraps ErrNotFound.
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsDuplicateError reports whether err wraps ErrDuplicate.
func IsDuplicateError(err error) bool {
	return errors.Is(err, ErrDuplicate)
}

// StoreError records which entity and operation failed.
type StoreError struct {
	Entity    string
	Operation string
	Message   string
	Err       error
}

func (e *StoreError) Error() string {
	msg := fmt.Sprintf("%s %s: %s", e.Entity, e.Operation, e.Message)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// NewStoreError builds a StoreError, for example
// NewStoreError("task", "insert", "failed to insert task", err).
func NewStoreError(entity, operation, message string, err error) *StoreError {
	return &StoreError{Entity: entity, Operation: operation, Message: message, Err: err}
}
