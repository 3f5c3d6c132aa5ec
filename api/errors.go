// Package api
// Author: momentics <momentics@gmail.com>
//
// Common error types and error handling utilities for hioload-ring.

package api

import (
	"errors"
	"fmt"
)

// Common errors used across the library.
var (
	ErrAllocation      = errors.New("allocation failed")
	ErrInvalidCapacity = errors.New("invalid capacity")
	ErrInvalidArgument = errors.New("invalid argument")
	ErrExecutorClosed  = errors.New("executor is closed")
)

// ErrorCode represents specific error conditions in the library.
type ErrorCode int

const (
	ErrCodeOK ErrorCode = iota
	ErrCodeAllocation
	ErrCodeInvalidCapacity
	ErrCodeInvalidArgument
	ErrCodeInternal
)

// String returns the lower-case code name.
func (c ErrorCode) String() string {
	switch c {
	case ErrCodeOK:
		return "ok"
	case ErrCodeAllocation:
		return "allocation"
	case ErrCodeInvalidCapacity:
		return "invalid_capacity"
	case ErrCodeInvalidArgument:
		return "invalid_argument"
	default:
		return "internal"
	}
}

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

// Unwrap maps the code onto its sentinel so errors.Is works.
func (e *Error) Unwrap() error {
	switch e.Code {
	case ErrCodeAllocation:
		return ErrAllocation
	case ErrCodeInvalidCapacity:
		return ErrInvalidCapacity
	case ErrCodeInvalidArgument:
		return ErrInvalidArgument
	default:
		return nil
	}
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
