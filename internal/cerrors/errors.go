// Package cerrors defines stable error codes for daemon client failures.
//
// Only faults carry a code: the degraded "unavailable" and "indexing"
// outcomes are response statuses on the wire, not errors.
package cerrors

import (
	"fmt"
)

// ErrorCode represents stable error codes for all failure modes
type ErrorCode string

const (
	// Timeout indicates a query exceeded its time budget
	Timeout ErrorCode = "TIMEOUT"
	// DecodeError indicates a malformed wire payload
	DecodeError ErrorCode = "DECODE_ERROR"
	// InternalError indicates an unexpected error
	InternalError ErrorCode = "INTERNAL_ERROR"
)

// CidError represents a cid error with a stable code and an optional cause
type CidError struct {
	Code    ErrorCode   `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
	cause   error
}

// New creates a new CidError
func New(code ErrorCode, message string, cause error) *CidError {
	return &CidError{
		Code:    code,
		Message: message,
		cause:   cause,
	}
}

// Error implements the error interface
func (e *CidError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *CidError) Unwrap() error {
	return e.cause
}

// WithDetails adds details to the error
func (e *CidError) WithDetails(details interface{}) *CidError {
	e.Details = details
	return e
}
