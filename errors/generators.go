package errors

import "fmt"

// NewResourceNotFoundError returns a new ErrNotFound error with kind
// KindResourceNotFound and the given message.
func NewResourceNotFoundError(message string, details Details) error {
	return Error{
		Code:    ErrNotFound,
		Kind:    KindResourceNotFound,
		Message: message,
		Details: details,
	}
}

// NewContextAbortedError creates a new ErrAborted error with kind
// KindContextAborted for the operation with the given name.
func NewContextAbortedError(operation string) error {
	return Error{
		Code:    ErrAborted,
		Kind:    KindContextAborted,
		Message: fmt.Sprintf("%s: context aborted", operation),
	}
}

// NewInternalErrorFromErr creates a new ErrInternal error with the given
// original error and message.
func NewInternalErrorFromErr(err error, message string, details Details) error {
	return Error{
		Code:    ErrInternal,
		Err:     err,
		Message: message,
		Details: details,
	}
}

// NewInvalidMatchConfigError creates a new ErrFatal error with kind
// KindInvalidMatchConfig. Matches must refuse to start for these.
func NewInvalidMatchConfigError(message string, details Details) error {
	return Error{
		Code:    ErrFatal,
		Kind:    KindInvalidMatchConfig,
		Message: message,
		Details: details,
	}
}
