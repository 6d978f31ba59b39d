// Package errors provides structured error types for repertoire.
//
// This package defines error codes and types that enable:
//   - Consistent error handling across the CLI and the HTTP API
//   - Machine-readable error codes for programmatic handling
//   - Typed move errors carrying the offending move and position
//
// # Error Codes
//
// Error codes follow a hierarchical naming convention:
//   - INVALID_*: Input validation failures
//   - NOT_FOUND_*: Resource not found
//   - NETWORK_*: Network-related errors
//   - INTERNAL_*: Unexpected internal errors
//
// Move errors have dedicated codes: [ErrCodeIllegalMove] when the rules of
// chess forbid a move, [ErrCodeUnknownMove] when a legal move has simply not
// been explored in the opening graph.
//
// # Usage
//
//	err := errors.New(errors.ErrCodeInvalidInput, "invalid color: %s", s)
//	if errors.Is(err, errors.ErrCodeInvalidInput) {
//	    // Handle validation error
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeNetwork, origErr, "failed to fetch %s", url)
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Input validation errors
	ErrCodeInvalidInput  Code = "INVALID_INPUT"
	ErrCodeInvalidColor  Code = "INVALID_COLOR"
	ErrCodeInvalidConfig Code = "INVALID_CONFIG"
	ErrCodeInvalidFormat Code = "INVALID_FORMAT"
	ErrCodeParse         Code = "PARSE_ERROR"

	// Move errors
	ErrCodeIllegalMove Code = "ILLEGAL_MOVE"
	ErrCodeUnknownMove Code = "UNKNOWN_MOVE"

	// Graph consistency errors
	ErrCodeConflict     Code = "REPERTOIRE_CONFLICT"
	ErrCodeInvalidState Code = "INVALID_STATE"

	// Resource not found errors
	ErrCodeNotFound     Code = "NOT_FOUND"
	ErrCodeFileNotFound Code = "FILE_NOT_FOUND"

	// Network errors
	ErrCodeNetwork     Code = "NETWORK_ERROR"
	ErrCodeTimeout     Code = "TIMEOUT"
	ErrCodeRateLimited Code = "RATE_LIMITED"

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

// coder is implemented by typed errors that carry a code without being *Error.
type coder interface {
	Code() Code
}

// Is reports whether err has the given error code.
// It walks the error chain and matches the first *Error or typed error
// implementing Code() whose code equals code.
func Is(err error, code Code) bool {
	return GetCode(err) == code && code != ""
}

// GetCode extracts the error code from an error, if available.
// Returns empty string if no error in the chain carries a code.
func GetCode(err error) Code {
	for err != nil {
		switch e := err.(type) {
		case *Error:
			return e.Code
		case coder:
			return e.Code()
		}
		err = errors.Unwrap(err)
	}
	return ""
}

// As finds the first error in err's chain that matches target.
// It is [errors.As] re-exported so callers need a single errors import.
func As(err error, target any) bool {
	return errors.As(err, target)
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

// IllegalMoveError reports a move that the rules of chess do not allow in
// the position it was played from. Accepting such a move would corrupt
// position identity, so it is always surfaced to the caller.
type IllegalMoveError struct {
	Move string // Move text as given by the caller
	FEN  string // Position the move was attempted in
	Ply  int    // Zero-based index within a sequence, -1 when not applicable

	// Unexplored is set when the rules allow the move but the opening graph
	// has no edge for it (explorer cursor moves).
	Unexplored bool
}

// Error implements the error interface.
func (e *IllegalMoveError) Error() string {
	var b strings.Builder
	if e.Unexplored {
		fmt.Fprintf(&b, "move %q is not explored", e.Move)
	} else {
		fmt.Fprintf(&b, "illegal move %q", e.Move)
	}
	if e.Ply >= 0 {
		fmt.Fprintf(&b, " at ply %d", e.Ply+1)
	}
	if e.FEN != "" {
		fmt.Fprintf(&b, " in position %s", e.FEN)
	}
	return b.String()
}

// Code returns the error code for this error type.
func (e *IllegalMoveError) Code() Code {
	return ErrCodeIllegalMove
}

// UnknownMoveError reports a legal move that is absent from the explored
// edges of the current position. It is the expected outcome of lookup misses
// and wrong practice guesses.
type UnknownMoveError struct {
	Move     string   // Move that was played
	Expected []string // Moves the graph knows for the position
}

// Error implements the error interface.
func (e *UnknownMoveError) Error() string {
	if len(e.Expected) == 0 {
		return fmt.Sprintf("move %q is not in the repertoire", e.Move)
	}
	return fmt.Sprintf("move %q is not in the repertoire (expected %s)", e.Move, strings.Join(e.Expected, ", "))
}

// Code returns the error code for this error type.
func (e *UnknownMoveError) Code() Code {
	return ErrCodeUnknownMove
}

// RateLimitedError provides additional information for rate-limited responses.
type RateLimitedError struct {
	RetryAfter int // Seconds to wait before retrying
	Message    string
}

// Error implements the error interface.
func (e *RateLimitedError) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("rate limited: retry after %d seconds", e.RetryAfter)
	}
	return "rate limited"
}

// Code returns the error code for this error type.
func (e *RateLimitedError) Code() Code {
	return ErrCodeRateLimited
}
