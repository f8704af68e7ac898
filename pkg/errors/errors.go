// Package errors provides structured error types for sigsvg.
//
// Every failure the library raises carries a machine-readable [Code] so
// callers can decide whether to abort or degrade without matching on message
// text:
//   - INVALID_INPUT: the caller passed something that is neither trace text
//     nor a list of records (a programming mistake, not bad data)
//   - INVALID_CONFIG: a stroke option or config file value is out of range
//   - PARSE_ERROR: trace text or records could not be decoded
//   - UNSUPPORTED: a runtime capability (compression) is unavailable
//
// # Usage
//
//	err := errors.New(errors.ErrCodeInvalidInput, "unsupported input type %T", v)
//	if errors.Is(err, errors.ErrCodeInvalidInput) {
//	    // Handle programming error
//	}
//
//	// Parse errors carry the decoder's diagnosis
//	if errors.CauseOf(err) == errors.CauseDepth {
//	    // Nesting too deep
//	}
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Caller errors
	ErrCodeInvalidInput  Code = "INVALID_INPUT"
	ErrCodeInvalidConfig Code = "INVALID_CONFIG"

	// Data errors
	ErrCodeParse Code = "PARSE_ERROR"

	// Runtime errors
	ErrCodeUnsupported Code = "UNSUPPORTED"
	ErrCodeInternal    Code = "INTERNAL_ERROR"
)

// Error is a structured error with a code and optional cause.
type Error struct {
	Code    Code       // Machine-readable error code
	Message string     // Human-readable message
	Parse   ParseCause // Decoder diagnosis, set only for ErrCodeParse
	Cause   error      // Underlying error (optional)
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
