// Package errors provides structured error types for convgraph.
//
// This package defines error codes and types that enable:
//   - Consistent error handling across the library, CLI and debug server
//   - Machine-readable error codes for programmatic handling
//   - User-friendly error messages
//   - Error wrapping with context preservation
//
// # Error Codes
//
// Error codes follow a hierarchical naming convention:
//   - INVALID_*: Registration or input validation failures
//   - *_NOT_FOUND, NO_CONVERTER: Lookups that found nothing
//   - CONVERSION_FAILED, UNSUPPORTED: Failures while converting values
//   - INTERNAL_*: Unexpected internal errors
//
// Resolution misses are not errors in the engine itself: the registry returns
// a nil converter. NO_CONVERTER exists for callers that want to turn a miss
// into an error, such as the CLI.
//
// # Usage
//
//	err := errors.New(errors.ErrCodeInvalidConverter, "converter %s has no output type", c)
//	if errors.Is(err, errors.ErrCodeInvalidConverter) {
//	    // Handle rejected registration
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeInvalidInput, parseErr, "parse type %q", expr)
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Registration errors
	ErrCodeInvalidConverter Code = "INVALID_CONVERTER"
	ErrCodeInvalidProvider  Code = "INVALID_PROVIDER"
	ErrCodeInvalidType      Code = "INVALID_TYPE"
	ErrCodeUnresolvedType   Code = "UNRESOLVED_TYPE"
	ErrCodeDuplexMismatch   Code = "DUPLEX_MISMATCH"

	// Input validation errors
	ErrCodeInvalidInput  Code = "INVALID_INPUT"
	ErrCodeInvalidFormat Code = "INVALID_FORMAT"

	// Lookup errors
	ErrCodeNotFound     Code = "NOT_FOUND"
	ErrCodeTypeNotFound Code = "TYPE_NOT_FOUND"
	ErrCodeNoConverter  Code = "NO_CONVERTER"

	// Conversion errors
	ErrCodeConversionFailed Code = "CONVERSION_FAILED"
	ErrCodeUnsupported      Code = "UNSUPPORTED"

	// Internal errors
	ErrCodeInternal Code = "INTERNAL_ERROR"
)

// Error is a structured error with a code and optional cause.
type Error struct {
	Code    Code   // Machine-readable error code
	Message string // Human-readable message
	Cause   error  // Underlying error (optional)
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As compatibility.
func (e *Error) Unwrap() error {
	return e.Cause
}

// New creates a new Error with the given code and formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap creates a new Error wrapping an existing error.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   cause,
	}
}

// Is reports whether err has the given error code.
// It unwraps the error chain looking for an *Error with a matching code.
func Is(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// GetCode extracts the error code from an error, if available.
// Returns empty string if the error is not an *Error.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// UserMessage returns a user-friendly message for the error.
// For *Error types, returns the message without the code prefix.
// For other errors, returns the error string as-is.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}

// ConversionError describes a value that could not be converted.
type ConversionError struct {
	From  string // Input type
	To    string // Output type
	Value any    // The offending value
}

// Error implements the error interface.
func (e *ConversionError) Error() string {
	return fmt.Sprintf("cannot convert %v (%s) to %s", e.Value, e.From, e.To)
}

// Code returns the error code for this error type.
func (e *ConversionError) Code() Code {
	return ErrCodeConversionFailed
}
