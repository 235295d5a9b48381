package core

import (
	"errors"
	"fmt"
)

// Predefined errors for common failure scenarios.
var (
	// ErrNotFound indicates that a requested memory was not found or is not
	// visible to the requesting user.
	ErrNotFound = errors.New("memory not found")

	// ErrInvalidConfig indicates that the provided configuration is invalid.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrEmptyContent indicates that memory content was empty or
	// whitespace-only after normalization. Such memories are meaningless and
	// are excluded from storage, not just from retrieval.
	ErrEmptyContent = errors.New("memory content is empty")

	// ErrMissingUserID indicates that an operation requiring a user
	// partition was invoked without one.
	ErrMissingUserID = errors.New("user id is required")

	// ErrStorageOperation indicates that a storage operation failed.
	ErrStorageOperation = errors.New("storage operation failed")
)

// RecallError wraps errors with operation context.
//
// It provides additional context about which operation failed, making error
// messages more informative for debugging.
//
// Example:
//
//	err := &RecallError{
//	    Op:  "Remember",
//	    Err: ErrEmptyContent,
//	}
//	// Error() returns: "recall: Remember: memory content is empty"
type RecallError struct {
	// Op is the name of the operation that failed.
	Op string

	// Err is the underlying error.
	Err error
}

// Error returns a formatted error message.
//
// The format is: "recall: <Op>: <Err>"
func (e *RecallError) Error() string {
	return fmt.Sprintf("recall: %s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error for error unwrapping.
//
// This allows using errors.Is() and errors.As() with RecallError.
func (e *RecallError) Unwrap() error {
	return e.Err
}

// NewRecallError creates a new RecallError wrapping the given error.
//
// If err is nil, returns nil. This allows safe error wrapping:
//
//	if err != nil {
//	    return NewRecallError("Remember", err)
//	}
//
// Parameters:
//   - op: Name of the operation (e.g., "Remember", "Recall", "Forget")
//   - err: The underlying error to wrap
//
// Returns a RecallError, or nil if err is nil.
func NewRecallError(op string, err error) error {
	if err == nil {
		return nil
	}
	return &RecallError{
		Op:  op,
		Err: err,
	}
}
