// Package errors provides structured error types for cargo-vendor-filterer.
//
// This package defines error codes and types that enable:
//   - Consistent error handling across the CLI and the filtering pipeline
//   - Machine-readable error codes for programmatic handling
//   - Error wrapping with context preservation
//
// # Error Codes
//
// Each code corresponds to one failure category of a vendoring run:
//   - CONFIG_ERROR: malformed flags, exclude rules, or embedded configuration
//   - EXTERNAL_TOOL: a collaborator subprocess exited non-zero
//   - OUTPUT_CONFLICT: the destination path already exists
//   - LAYOUT_ERROR: an expected manifest, checksum file, or crate directory is absent
//   - PARSE_ERROR: malformed collaborator output or an unparseable version
//   - INTEGRITY_INVARIANT: a post-condition of the destructive steps was violated
//
// # Usage
//
//	err := errors.New(errors.ErrCodeConfig, "invalid exclude rule %q", rule)
//	if errors.Is(err, errors.ErrCodeConfig) {
//	    // Handle configuration error
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeExternalTool, origErr, "cargo vendor failed")
//
// Propagation is fail-fast: the first error anywhere aborts the run, and
// nothing is retried or recovered locally.
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for the failure categories of a vendoring run.
const (
	ErrCodeConfig             Code = "CONFIG_ERROR"
	ErrCodeExternalTool       Code = "EXTERNAL_TOOL"
	ErrCodeOutputConflict     Code = "OUTPUT_CONFLICT"
	ErrCodeLayout             Code = "LAYOUT_ERROR"
	ErrCodeParse              Code = "PARSE_ERROR"
	ErrCodeIntegrityInvariant Code = "INTEGRITY_INVARIANT"
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
// For *Error types, returns the message (with cause) without the code prefix.
// For other errors, returns the error string as-is.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		if e.Cause != nil {
			return fmt.Sprintf("%s: %v", e.Message, e.Cause)
		}
		return e.Message
	}
	return err.Error()
}
