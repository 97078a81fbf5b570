package errors

import (
	"errors"
	"fmt"
)

// ErrorCode represents a unique error code for stable testing
type ErrorCode string

// Error codes, grouped by the failure class they report
const (
	// General errors
	ErrUnknown      ErrorCode = "UNKNOWN"
	ErrInternal     ErrorCode = "INTERNAL"
	ErrInvalidInput ErrorCode = "INVALID_INPUT"
	ErrNotFound     ErrorCode = "NOT_FOUND"

	// Usage errors: bad invocations, rejected before anything runs
	ErrUsage            ErrorCode = "USAGE"
	ErrEmptyBranchName  ErrorCode = "EMPTY_BRANCH_NAME"
	ErrBranchWithMirror ErrorCode = "BRANCH_WITH_MIRROR"

	// Precondition errors: the world is not in the state the operation needs
	ErrVariationNotFound ErrorCode = "VARIATION_NOT_FOUND"
	ErrVariationExists   ErrorCode = "VARIATION_EXISTS"
	ErrSourceMismatch    ErrorCode = "SOURCE_MISMATCH"
	ErrSourceMissing     ErrorCode = "SOURCE_MISSING"
	ErrLocked            ErrorCode = "LOCKED"

	// Capability errors: an external tool failed or is absent
	ErrGitUnavailable  ErrorCode = "GIT_UNAVAILABLE"
	ErrGitCommand      ErrorCode = "GIT_COMMAND"
	ErrDiffFailed      ErrorCode = "DIFF_FAILED"
	ErrApplyFailed     ErrorCode = "APPLY_FAILED"
	ErrApplyConflict   ErrorCode = "APPLY_CONFLICT"
	ErrUntrackedCopy   ErrorCode = "UNTRACKED_COPY"
	ErrSyncUnavailable ErrorCode = "SYNC_UNAVAILABLE"
	ErrSyncFailed      ErrorCode = "SYNC_FAILED"
	ErrCheckoutFailed  ErrorCode = "CHECKOUT_FAILED"
	ErrBranchFailed    ErrorCode = "BRANCH_FAILED"

	// Filesystem errors
	ErrDestExists  ErrorCode = "DEST_EXISTS"
	ErrCloneFailed ErrorCode = "CLONE_FAILED"
	ErrRegistryIO  ErrorCode = "REGISTRY_IO"
	ErrFileAccess  ErrorCode = "FILE_ACCESS"

	// Configuration errors
	ErrConfigLoad  ErrorCode = "CONFIG_LOAD"
	ErrConfigParse ErrorCode = "CONFIG_PARSE"
)

// VaryError represents a structured error with code and details
type VaryError struct {
	Code    ErrorCode
	Message string
	Details map[string]interface{}
	Wrapped error
}

// Error implements the error interface
func (e *VaryError) Error() string {
	if e.Wrapped != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Wrapped)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap implements the errors.Unwrap interface
func (e *VaryError) Unwrap() error {
	return e.Wrapped
}

// Is implements errors.Is interface
func (e *VaryError) Is(target error) bool {
	var targetErr *VaryError
	if errors.As(target, &targetErr) {
		return e.Code == targetErr.Code
	}
	return false
}

// New creates a new VaryError with the given code and message
func New(code ErrorCode, message string) *VaryError {
	return &VaryError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
	}
}

// Newf creates a new VaryError with a formatted message
func Newf(code ErrorCode, format string, args ...interface{}) *VaryError {
	return &VaryError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
	}
}

// Wrap wraps an existing error with a VaryError
func Wrap(err error, code ErrorCode, message string) *VaryError {
	if err == nil {
		return nil
	}
	return &VaryError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// Wrapf wraps an existing error with a formatted message
func Wrapf(err error, code ErrorCode, format string, args ...interface{}) *VaryError {
	if err == nil {
		return nil
	}
	return &VaryError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// WithDetail adds a detail to the error
func (e *VaryError) WithDetail(key string, value interface{}) *VaryError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// IsErrorCode checks if an error has a specific error code
func IsErrorCode(err error, code ErrorCode) bool {
	var varyErr *VaryError
	if errors.As(err, &varyErr) {
		return varyErr.Code == code
	}
	return false
}

// GetErrorCode returns the error code from an error, or ErrUnknown if not a VaryError
func GetErrorCode(err error) ErrorCode {
	var varyErr *VaryError
	if errors.As(err, &varyErr) {
		return varyErr.Code
	}
	return ErrUnknown
}

// IsUsage reports whether the error belongs to the usage class: invalid
// invocations that are rejected before any mutation is attempted.
func IsUsage(err error) bool {
	switch GetErrorCode(err) {
	case ErrUsage, ErrEmptyBranchName, ErrBranchWithMirror, ErrInvalidInput:
		return true
	}
	return false
}

// IsPrecondition reports whether the error belongs to the precondition class:
// the variation or its source is not in a mergeable state.
func IsPrecondition(err error) bool {
	switch GetErrorCode(err) {
	case ErrVariationNotFound, ErrVariationExists, ErrSourceMismatch, ErrSourceMissing, ErrLocked:
		return true
	}
	return false
}
