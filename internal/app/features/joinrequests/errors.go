package joinrequests

import (
	"errors"
	"fmt"
)

// ValidationError reports missing or malformed input.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

func invalid(format string, args ...any) error {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

// StorageError wraps a persistence failure. It is surfaced, never retried.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string { return e.Op + ": " + e.Err.Error() }
func (e *StorageError) Unwrap() error { return e.Err }

func storage(op string, err error) error {
	return &StorageError{Op: op, Err: err}
}

var (
	ErrDuplicateRequest = errors.New("requester already accepted for this target")
	ErrNotFound         = errors.New("join request not found")
	ErrTargetNotFound   = errors.New("target not found")
	ErrAlreadyDecided   = errors.New("join request already decided")
	ErrForbidden        = errors.New("actor does not own this join request")
)
