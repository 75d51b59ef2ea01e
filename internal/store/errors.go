package store

import (
	"errors"
	"fmt"
)

// Category sentinels. Entity-specific errors below wrap one of them so the
// API can map by category with errors.Is.
var (
	ErrNotFound          = errors.New("not found")
	ErrDuplicate         = errors.New("already exists")
	ErrInvalidEntity     = errors.New("rejected by constraint")
	ErrTransactionFailed = errors.New("transaction failed")
)

var (
	// ErrTaskNotFound is also returned for a task owned by another user.
	ErrTaskNotFound   = fmt.Errorf("task %w", ErrNotFound)
	ErrUserNotFound   = fmt.Errorf("user %w", ErrNotFound)
	ErrUsernameExists = fmt.Errorf("username %w", ErrDuplicate)
)

// StoreError records which store call failed, e.g. "task query: failed to
// count tasks: <cause>".
type StoreError struct {
	Entity    string
	Operation string
	Message   string
	Err       error
}

func (e *StoreError) Error() string {
	msg := e.Entity + " " + e.Operation + ": " + e.Message
	if e.Err == nil {
		return msg
	}
	return msg + ": " + e.Err.Error()
}

func (e *StoreError) Unwrap() error { return e.Err }

// NewStoreError wraps err with the entity and operation it came from.
func NewStoreError(entity, operation, message string, err error) *StoreError {
	return &StoreError{Entity: entity, Operation: operation, Message: message, Err: err}
}
