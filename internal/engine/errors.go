package engine

import (
	"errors"
	"fmt"
)

// Sentinel errors for every condition the engine reports. All of them are
// local and recoverable; callers decide how to present them.
var (
	// ErrNotFound: a name or identifier lookup failed, or a heap alias
	// refers to a record that has since left the registry.
	ErrNotFound = errors.New("patient not found")

	// ErrEmptyQueue: dequeue on an empty attendance queue.
	ErrEmptyQueue = errors.New("attendance queue is empty")

	// ErrEmpty: extract on an empty priority heap.
	ErrEmpty = errors.New("priority heap is empty")

	// ErrFull: insert on a priority heap at capacity.
	ErrFull = errors.New("priority heap is full")

	// ErrNoHistory: undo with an empty operation log.
	ErrNoHistory = errors.New("no operation to undo")

	// ErrInvalidField: an update named an unknown field or carried text
	// that could not be parsed into the field's type.
	ErrInvalidField = errors.New("invalid field")

	// ErrStorageUnavailable: the persistence boundary could not be reached.
	// Returned by the flat-file and SQLite adapters; in-memory state is
	// never touched when it occurs.
	ErrStorageUnavailable = errors.New("storage unavailable")
)

// ErrorCode is the stable, machine-readable name of an error kind.
type ErrorCode string

const (
	CodeNotFound           ErrorCode = "NOT_FOUND"
	CodeEmptyQueue         ErrorCode = "EMPTY_QUEUE"
	CodeEmpty              ErrorCode = "EMPTY"
	CodeFull               ErrorCode = "FULL"
	CodeNoHistory          ErrorCode = "NO_HISTORY"
	CodeInvalidField       ErrorCode = "INVALID_FIELD"
	CodeStorageUnavailable ErrorCode = "STORAGE_UNAVAILABLE"
	CodeUnknown            ErrorCode = "UNKNOWN"
)

var codes = []struct {
	err  error
	code ErrorCode
}{
	{ErrNotFound, CodeNotFound},
	{ErrEmptyQueue, CodeEmptyQueue},
	{ErrEmpty, CodeEmpty},
	{ErrFull, CodeFull},
	{ErrNoHistory, CodeNoHistory},
	{ErrInvalidField, CodeInvalidField},
	{ErrStorageUnavailable, CodeStorageUnavailable},
}

// CodeOf maps an error to its ErrorCode. Wrapped errors are unwrapped.
// Returns "" for a nil error and CodeUnknown for anything foreign.
func CodeOf(err error) ErrorCode {
	if err == nil {
		return ""
	}
	for _, c := range codes {
		if errors.Is(err, c.err) {
			return c.code
		}
	}
	return CodeUnknown
}

// OpError records the operation and subject that produced an error.
//
// Unwrap returns the sentinel, so errors.Is(err, ErrNotFound) holds for an
// *OpError produced by a failed lookup.
type OpError struct {
	// Op is the operation name, e.g. "enqueue" or "registry.remove".
	Op string

	// Subject is the name or identifier the operation was called with.
	// Empty for operations without one (dequeue, undo).
	Subject string

	// Err is the underlying sentinel or parse error.
	Err error
}

// Error implements the error interface.
func (e *OpError) Error() string {
	if e.Subject != "" {
		return fmt.Sprintf("%s %q: %v", e.Op, e.Subject, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *OpError) Unwrap() error {
	return e.Err
}

func opError(op, subject string, err error) *OpError {
	return &OpError{Op: op, Subject: subject, Err: err}
}

// IsNotFound reports whether err is (or wraps) ErrNotFound.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsUnderflow reports whether err is an empty-structure condition on either
// the attendance queue or the priority heap.
func IsUnderflow(err error) bool {
	return errors.Is(err, ErrEmptyQueue) || errors.Is(err, ErrEmpty)
}

// IsStorageUnavailable reports whether err came from an unreachable
// persistence boundary.
func IsStorageUnavailable(err error) bool {
	return errors.Is(err, ErrStorageUnavailable)
}
