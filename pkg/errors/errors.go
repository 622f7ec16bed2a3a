// Package errors provides structured error types for poddiff.
//
// This package defines error codes and types that enable:
//   - Consistent error handling across the CLI and the HTTP API
//   - Machine-readable error codes for programmatic handling
//   - User-friendly error messages
//   - Error wrapping with context preservation
//
// # Error Codes
//
// Error codes follow a hierarchical naming convention:
//   - INVALID_*: Usage and input validation failures
//   - *_NOT_FOUND, AMBIGUOUS_POD, LOOKUP_FAILED: Pod lookup failures
//   - RESOLUTION_FAILED: Dependency resolution failures
//   - NETWORK_*: Network-related errors
//   - INTERNAL_*: Unexpected internal errors
//
// # Usage
//
//	err := errors.New(errors.ErrCodeInvalidInput, "A Pod name is required.")
//	if errors.Is(err, errors.ErrCodeInvalidInput) {
//	    // Print usage
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeResolution, origErr, "unable to resolve %s", pod)
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Usage errors
	ErrCodeInvalidInput    Code = "INVALID_INPUT"
	ErrCodeInvalidVersion  Code = "INVALID_VERSION"
	ErrCodeInvalidPlatform Code = "INVALID_PLATFORM"
	ErrCodeInvalidPattern  Code = "INVALID_PATTERN"
	ErrCodeInvalidPackage  Code = "INVALID_PACKAGE"
	ErrCodeInvalidPath     Code = "INVALID_PATH"

	// Lookup errors
	ErrCodePodNotFound     Code = "POD_NOT_FOUND"
	ErrCodeAmbiguousPod    Code = "AMBIGUOUS_POD"
	ErrCodeVersionNotFound Code = "VERSION_NOT_FOUND"
	ErrCodeLookup          Code = "LOOKUP_FAILED"

	// Resolution errors
	ErrCodeResolution Code = "RESOLUTION_FAILED"

	// Network errors
	ErrCodeNetwork Code = "NETWORK_ERROR"

	// Internal errors
	ErrCodeInternal    Code = "INTERNAL_ERROR"
	ErrCodeUnsupported Code = "UNSUPPORTED"
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
// Only the outermost *Error is considered.
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

// IsUsage reports whether err is a usage error that should be reported
// together with the command's help text.
func IsUsage(err error) bool {
	switch GetCode(err) {
	case ErrCodeInvalidInput, ErrCodeInvalidVersion, ErrCodeInvalidPlatform, ErrCodeInvalidPattern, ErrCodeInvalidPackage:
		return true
	}
	return false
}

// IsLookup reports whether err describes a pod that could not be located.
func IsLookup(err error) bool {
	switch GetCode(err) {
	case ErrCodeLookup, ErrCodePodNotFound, ErrCodeAmbiguousPod, ErrCodeVersionNotFound:
		return true
	}
	return false
}
