// Package errors provides standardized error types for DataFrame operations.
// DataFrameError carries the failing operation, the column involved and an
// optional cause so callers can match failures with errors.Is and errors.As.
package errors

import (
	"fmt"
	"strings"
)

// DataFrameError represents standardized errors across all DataFrame operations
type DataFrameError struct {
	Op      string // Operation name (e.g., "Sort", "GridComplete", "Expand")
	Column  string // Column name if applicable
	Message string // Human-readable error description
	Cause   error  // Underlying error cause
}

// Error implements the error interface
func (e *DataFrameError) Error() string {
	if e.Column != "" {
		return fmt.Sprintf("%s operation failed on column '%s': %s", e.Op, e.Column, e.Message)
	}
	return fmt.Sprintf("%s operation failed: %s", e.Op, e.Message)
}

// Unwrap returns the underlying cause for error wrapping support
func (e *DataFrameError) Unwrap() error {
	return e.Cause
}

// Is implements error equality checking for errors.Is()
func (e *DataFrameError) Is(target error) bool {
	if df, ok := target.(*DataFrameError); ok {
		return e.Op == df.Op && e.Column == df.Column && e.Message == df.Message
	}
	return false
}

// MethodNotRecognizedError reports every requested aggregate method name that
// is not one of the supported methods.
type MethodNotRecognizedError struct {
	Methods []string
}

// Error implements the error interface
func (e *MethodNotRecognizedError) Error() string {
	return fmt.Sprintf("method(s) not recognized: %s", strings.Join(e.Methods, ", "))
}

// Is matches any other MethodNotRecognizedError regardless of the names it carries.
func (e *MethodNotRecognizedError) Is(target error) bool {
	_, ok := target.(*MethodNotRecognizedError)
	return ok
}

// Common error constructors for consistent error creation

// NewColumnNotFoundError creates an error for operations on non-existent columns
func NewColumnNotFoundError(op, column string) *DataFrameError {
	return &DataFrameError{
		Op:      op,
		Column:  column,
		Message: "column does not exist",
	}
}

// NewInvalidInputError creates an error for invalid operation inputs
func NewInvalidInputError(op, message string) *DataFrameError {
	return &DataFrameError{
		Op:      op,
		Message: message,
	}
}

// NewUnsupportedTypeError creates an error for unsupported data types
func NewUnsupportedTypeError(op, typeName string) *DataFrameError {
	return &DataFrameError{
		Op:      op,
		Message: fmt.Sprintf("unsupported type: %s", typeName),
	}
}

// NewValidationError creates an error for input validation failures
func NewValidationError(op, column, message string) *DataFrameError {
	return &DataFrameError{
		Op:      op,
		Column:  column,
		Message: message,
	}
}

// NewInternalError creates an error for internal operation failures
func NewInternalError(op string, cause error) *DataFrameError {
	return &DataFrameError{
		Op:      op,
		Message: "internal error occurred",
		Cause:   cause,
	}
}

// NewMethodNotRecognizedError lists the unrecognized method names.
func NewMethodNotRecognizedError(methods ...string) *MethodNotRecognizedError {
	return &MethodNotRecognizedError{Methods: methods}
}

// NewGridTooLargeError reports a grid completion whose entity×period product
// exceeds the configured cell limit.
func NewGridTooLargeError(entities, periods int, limit int64) *DataFrameError {
	return &DataFrameError{
		Op: "GridComplete",
		Message: fmt.Sprintf("grid of %d entities x %d periods exceeds limit of %d rows",
			entities, periods, limit),
		Cause: ErrGridTooLarge,
	}
}

// Predefined error variables for common cases
var (
	// ErrEmptyDataFrame indicates operations on empty DataFrames
	ErrEmptyDataFrame = &DataFrameError{
		Op:      "validation",
		Message: "operation not supported on empty DataFrame",
	}

	// ErrMismatchedLength indicates length mismatches in operations
	ErrMismatchedLength = &DataFrameError{
		Op:      "validation",
		Message: "arrays must have the same length",
	}

	// ErrGridTooLarge is the cause of every grid size rejection
	ErrGridTooLarge = &DataFrameError{
		Op:      "GridComplete",
		Message: "grid exceeds configured cell limit",
	}
)
