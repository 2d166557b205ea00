// Package domain defines the core domain models for TimeCloak.
package domain

import (
	"errors"
	"fmt"
)

// DomainError represents a business domain error with a structured error code.
type DomainError struct {
	Code    string // Error code (e.g., "TC-TOKN-4010")
	Message string // Human-readable message
	Details string // Optional additional details
	Cause   error  // Underlying error (if any)
}

// Error implements the error interface.
func (e *DomainError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("[%s] %s: %s", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error for errors.Unwrap() support.
func (e *DomainError) Unwrap() error {
	return e.Cause
}

// Is implements errors.Is() support for error comparison.
// Two DomainErrors compare equal when their codes match.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// NewDomainError creates a new DomainError with the given code and message.
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// WithDetails returns a copy of the error with additional details.
func (e *DomainError) WithDetails(details string) *DomainError {
	return &DomainError{
		Code:    e.Code,
		Message: e.Message,
		Details: details,
		Cause:   e.Cause,
	}
}

// WithCause returns a copy of the error wrapping the given cause.
func (e *DomainError) WithCause(cause error) *DomainError {
	return &DomainError{
		Code:    e.Code,
		Message: e.Message,
		Details: e.Details,
		Cause:   cause,
	}
}

// GetErrorCode extracts the error code from an error if it's a DomainError.
func GetErrorCode(err error) string {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Code
	}
	return ""
}

// ============================================================================
// Matrix Errors (MTRX)
// ============================================================================

var (
	// ErrMatrixMalformed indicates the substitution matrix violates a
	// structural invariant. Fatal at startup; never produced at runtime.
	ErrMatrixMalformed = NewDomainError("TC-MTRX-4000", "malformed matrix")
)

// ============================================================================
// Token Errors (TOKN)
// ============================================================================

var (
	// ErrTokenInvalid is the uniform decode failure. Every fallible decode
	// step reports this exact error so a caller (or an attacker probing the
	// verifier) cannot distinguish a bad separator from a wrong matrix from
	// tampering.
	ErrTokenInvalid = NewDomainError("TC-TOKN-4010", "invalid token")

	// ErrTokenExpired indicates the embedded timestamp drifted outside the
	// allowed skew window.
	ErrTokenExpired = NewDomainError("TC-TOKN-4011", "token expired")

	// ErrTokenReplay indicates the token was already seen within its window.
	ErrTokenReplay = NewDomainError("TC-TOKN-4015", "token replay detected")
)

// ============================================================================
// System Errors (SYS)
// ============================================================================

var (
	// ErrInternalServer indicates an internal server error.
	ErrInternalServer = NewDomainError("TC-SYS-5000", "internal server error")

	// ErrStorage indicates a replay-cache storage failure.
	ErrStorage = NewDomainError("TC-SYS-5001", "storage error")

	// ErrRateLimited indicates too many requests.
	ErrRateLimited = NewDomainError("TC-SYS-4290", "too many requests")
)

// ============================================================================
// Argument Errors (ARG)
// ============================================================================

var (
	// ErrInvalidArgument indicates an invalid argument.
	ErrInvalidArgument = NewDomainError("TC-ARG-1001", "invalid argument")

	// ErrMissingArgument indicates a required argument is missing.
	ErrMissingArgument = NewDomainError("TC-ARG-1002", "missing required argument")
)
