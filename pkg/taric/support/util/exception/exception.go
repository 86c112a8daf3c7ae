// Package exception defines the error type used for programming and
// configuration failures in the importer. Data problems found in an
// envelope never surface as errors; they are recorded as issues instead.
package exception

import (
	"errors"
	"fmt"
	"runtime"
	"strings"
)

var (
	// ErrSplitJobUnsupported is returned when a split-job batch is given to
	// the v2 chunker.
	ErrSplitJobUnsupported = errors.New("split jobs are not supported by this importer")
	// ErrParserNotRegistered is returned when a model has no parser definition.
	ErrParserNotRegistered = errors.New("no parser registered")
	// ErrMissingArgument is returned when a required constructor argument is absent.
	ErrMissingArgument = errors.New("missing required argument")
	// ErrChunkNotClaimed is returned when a chunk claim loses the race.
	ErrChunkNotClaimed = errors.New("chunk was not claimed")
	// ErrBatchFinished is returned when mutating a batch already SUCCEEDED or FAILED.
	ErrBatchFinished = errors.New("import batch already finished")
)

// ImportError wraps a failure with the module it came from.
type ImportError struct {
	// Module is the component that raised the error, e.g. "chunker".
	Module string
	// Message is a short description.
	Message string
	// OriginalErr is the wrapped cause, if any.
	OriginalErr error
	retryable   bool
	// StackTrace is captured at construction for debugging.
	StackTrace string
}

// NewImportError builds an ImportError. Errors that are not retryable are fatal.
func NewImportError(module, message string, originalErr error, retryable bool) *ImportError {
	buf := make([]byte, 2048)
	n := runtime.Stack(buf, false)
	return &ImportError{
		Module:      module,
		Message:     message,
		OriginalErr: originalErr,
		retryable:   retryable,
		StackTrace:  string(buf[:n]),
	}
}

// NewImportErrorf formats the message. A trailing error argument is taken as
// the wrapped cause; the error is never retryable.
func NewImportErrorf(module, format string, a ...interface{}) *ImportError {
	var cause error
	if len(a) > 0 {
		if err, ok := a[len(a)-1].(error); ok {
			cause = err
			a = a[:len(a)-1]
		}
	}
	return NewImportError(module, fmt.Sprintf(format, a...), cause, false)
}

// Error implements error.
func (e *ImportError) Error() string {
	if e.OriginalErr != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Module, e.Message, e.OriginalErr)
	}
	return fmt.Sprintf("[%s] %s", e.Module, e.Message)
}

// Unwrap returns the wrapped cause.
func (e *ImportError) Unwrap() error {
	return e.OriginalErr
}

// IsRetryable reports whether an operator may retry the failed operation.
func (e *ImportError) IsRetryable() bool {
	return e.retryable
}

// IsImportError reports whether err is, or wraps, an *ImportError.
func IsImportError(err error) bool {
	var ie *ImportError
	return errors.As(err, &ie)
}

// IsRetryable reports whether err is retryable. Plain errors are retryable
// only when they look like transient connection problems.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	var ie *ImportError
	if errors.As(err, &ie) {
		return ie.IsRetryable()
	}
	msg := err.Error()
	return strings.Contains(msg, "timeout") ||
		strings.Contains(msg, "connection refused") ||
		strings.Contains(msg, "connection reset")
}

// IsFatal reports whether err must stop processing of the batch.
func IsFatal(err error) bool {
	return err != nil && !IsRetryable(err)
}

// ExtractErrorMessage returns the Message of an ImportError or err.Error().
func ExtractErrorMessage(err error) string {
	if err == nil {
		return ""
	}
	var ie *ImportError
	if errors.As(err, &ie) {
		return ie.Message
	}
	return err.Error()
}
