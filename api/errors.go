// File: api/errors.go
// Author: momentics <momentics@gmail.com>
//
// Common error types and error handling utilities for hioload-sock.

package api

import (
	"fmt"
	"syscall"
)

// Common errors used across the library.
var (
	ErrRingClosed       = fmt.Errorf("completion ring is closed")
	ErrSocketClosed     = fmt.Errorf("socket is closed")
	ErrSubmissionFull   = fmt.Errorf("submission queue is full")
	ErrInvalidArgument  = fmt.Errorf("invalid argument")
	ErrNoProgress       = fmt.Errorf("write made no progress")
	ErrNotSupported     = fmt.Errorf("operation not supported")
	ErrListenerClosed   = fmt.Errorf("listener is closed")
	ErrResolveNoAddress = fmt.Errorf("resolver returned no usable address")
)

// ErrorCode represents specific error conditions in the library.
type ErrorCode int

const (
	ErrCodeOK ErrorCode = iota
	ErrCodeInvalidArgument
	ErrCodeRingClosed
	ErrCodeCanceled
	ErrCodeNoProgress
	ErrCodeUnsupportedFamily
	ErrCodeInternal
)

// Error represents a structured error with code and context.
type Error struct {
	Code    ErrorCode
	Message string
	Context map[string]any
}

// Error implements the error interface.
func (e *Error) Error() string {
	if len(e.Context) == 0 {
		return e.Message
	}
	return fmt.Sprintf("%s (context: %+v)", e.Message, e.Context)
}

// NewError creates a new structured error.
func NewError(code ErrorCode, message string) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Context: make(map[string]any),
	}
}

// WithContext adds context information to the error.
func (e *Error) WithContext(key string, value any) *Error {
	if e.Context == nil {
		e.Context = make(map[string]any)
	}
	e.Context[key] = value
	return e
}

// IOError is a failed kernel operation, built from the negated errno
// carried in a negative completion result.
type IOError struct {
	Op    string
	Errno syscall.Errno
}

// Error implements the error interface.
func (e *IOError) Error() string {
	return fmt.Sprintf("%s: %s (errno %d)", e.Op, e.Errno.Error(), int(e.Errno))
}

// Unwrap exposes the errno for errors.Is matching against syscall
// constants such as unix.ECONNREFUSED.
func (e *IOError) Unwrap() error { return e.Errno }

// Canceled reports whether the operation was torn off the ring before
// it completed.
func (e *IOError) Canceled() bool { return e.Errno == syscall.ECANCELED }

// CompletionErr translates a raw completion result into an error.
// Non-negative results are success and yield nil.
func CompletionErr(op string, res int) error {
	if res >= 0 {
		return nil
	}
	return &IOError{Op: op, Errno: syscall.Errno(-res)}
}
