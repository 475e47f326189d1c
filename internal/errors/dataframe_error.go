// Package errors provides standardized error types for dataset preparation.
// DataFrameError carries the failing operation, the column and data row when
// known, and an optional cause for wrapping.
package errors

import (
	"fmt"
)

// DataFrameError represents standardized errors across all preparation steps
type DataFrameError struct {
	Op      string // Operation name (e.g., "ReadData", "CoerceTypes", "HandleLanguages")
	Column  string // Column name if applicable
	Row     int    // 1-based data row if applicable, 0 otherwise
	Message string // Human-readable error description
	Cause   error  // Underlying error cause
}

// Error implements the error interface
func (e *DataFrameError) Error() string {
	var msg string
	switch {
	case e.Column != "" && e.Row > 0:
		msg = fmt.Sprintf("%s operation failed on column '%s' at row %d: %s", e.Op, e.Column, e.Row, e.Message)
	case e.Column != "":
		msg = fmt.Sprintf("%s operation failed on column '%s': %s", e.Op, e.Column, e.Message)
	default:
		msg = fmt.Sprintf("%s operation failed: %s", e.Op, e.Message)
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap returns the underlying cause for error wrapping support
func (e *DataFrameError) Unwrap() error {
	return e.Cause
}

// Is implements error equality checking for errors.Is().
// Row and Cause are ignored so a sentinel matches any occurrence.
func (e *DataFrameError) Is(target error) bool {
	if df, ok := target.(*DataFrameError); ok {
		return e.Op == df.Op && e.Column == df.Column && e.Message == df.Message
	}
	return false
}

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
func NewUnsupportedTypeError(op, column, typeName string) *DataFrameError {
	return &DataFrameError{
		Op:      op,
		Column:  column,
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

// NewMalformedValueError reports a cell that could not be parsed.
// index is the 0-based row index; it is stored 1-based. Values longer than
// 40 runes are shortened.
func NewMalformedValueError(op, column string, index int, value string, cause error) *DataFrameError {
	const maxShown = 40
	if runes := []rune(value); len(runes) > maxShown {
		value = string(runes[:maxShown]) + "..."
	}
	return &DataFrameError{
		Op:      op,
		Column:  column,
		Row:     index + 1,
		Message: fmt.Sprintf("malformed value %q", value),
		Cause:   cause,
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
)
