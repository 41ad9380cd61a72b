package workout

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrNoRoutineConfigured means the requested day has no muscle groups.
	ErrNoRoutineConfigured = errors.New("no routine configured")
	// ErrEmptyWorkout means completion was requested with nothing selected.
	ErrEmptyWorkout = errors.New("no exercises selected")
	// ErrUnauthorized means the resource belongs to another user.
	ErrUnauthorized = errors.New("resource belongs to another user")
	// ErrNotFound means a referenced user, exercise or session does not exist.
	ErrNotFound = errors.New("not found")
	// ErrInvalidInput means the caller supplied an out-of-range or malformed value.
	ErrInvalidInput = errors.New("invalid input")
	// ErrStorage means persistence failed; nothing was committed.
	ErrStorage = errors.New("storage failure")
)

// NoRoutineError reports the day that has no muscle groups assigned.
type NoRoutineError struct {
	Day int
}

func (e *NoRoutineError) Error() string {
	return fmt.Sprintf("no muscle groups assigned to day %d", e.Day)
}

func (e *NoRoutineError) Is(target error) bool {
	return target == ErrNoRoutineConfigured
}

// StorageError wraps a persistence failure with the engine operation it
// interrupted.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("%s: storage failure: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

func (e *StorageError) Is(target error) bool {
	return target == ErrStorage
}

var domainErrors = []error{
	ErrNoRoutineConfigured,
	ErrEmptyWorkout,
	ErrUnauthorized,
	ErrNotFound,
	ErrInvalidInput,
}

// classify passes engine error kinds through untouched and turns anything
// else into a StorageError.
func classify(op string, err error) error {
	if err == nil {
		return nil
	}
	for _, kind := range domainErrors {
		if errors.Is(err, kind) {
			return err
		}
	}
	if errors.Is(err, ErrStorage) {
		return err
	}
	return &StorageError{Op: op, Err: err}
}

// IsRetryable reports whether the caller may simply retry the operation.
func IsRetryable(err error) bool {
	if errors.Is(err, context.Canceled) {
		return false
	}
	return errors.Is(err, ErrStorage)
}

func invalidf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}

func notFoundf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrNotFound, fmt.Sprintf(format, args...))
}
