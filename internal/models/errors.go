package models

import (
	"errors"
	"fmt"
)

// Error codes carried by AppError.
const (
	CodeNotFound            = "NOT_FOUND"
	CodeInvalidID           = "INVALID_ID"
	CodeValidation          = "VALIDATION_ERROR"
	CodeConstraintViolation = "CONSTRAINT_VIOLATION"
	CodeBackend             = "BACKEND_ERROR"
)

// ErrAppendOnly is returned by the interaction hooks when a row would be
// updated or deleted.
var ErrAppendOnly = errors.New("interaction rows are append-only")

// AppError represents a classified application error.
type AppError struct {
	Code    string
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NewNotFoundError reports a lookup that matched no row.
func NewNotFoundError(resource string, id interface{}) *AppError {
	return &AppError{
		Code:    CodeNotFound,
		Message: fmt.Sprintf("%s with ID %v not found", resource, id),
	}
}

// NewInvalidIDError reports a lookup rejected before any query ran.
func NewInvalidIDError(resource string, id interface{}) *AppError {
	return &AppError{
		Code:    CodeInvalidID,
		Message: fmt.Sprintf("%s ID must be greater than 0, got %v", resource, id),
	}
}

func NewValidationError(message string) *AppError {
	return &AppError{
		Code:    CodeValidation,
		Message: message,
	}
}

// NewConstraintError wraps a storage constraint violation. The driver error is
// kept as-is so callers can inspect it.
func NewConstraintError(resource string, err error) *AppError {
	return &AppError{
		Code:    CodeConstraintViolation,
		Message: fmt.Sprintf("%s violates a storage constraint", resource),
		Err:     err,
	}
}

func NewBackendError(resource, operation string, err error) *AppError {
	return &AppError{
		Code:    CodeBackend,
		Message: fmt.Sprintf("%s %s failed", resource, operation),
		Err:     err,
	}
}

// ErrorCode returns the AppError code found in err's chain, or "".
func ErrorCode(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ""
}

func IsNotFound(err error) bool {
	return ErrorCode(err) == CodeNotFound
}

func IsInvalidID(err error) bool {
	return ErrorCode(err) == CodeInvalidID
}

func IsValidation(err error) bool {
	return ErrorCode(err) == CodeValidation
}

func IsConstraintViolation(err error) bool {
	return ErrorCode(err) == CodeConstraintViolation
}

func IsBackend(err error) bool {
	return ErrorCode(err) == CodeBackend
}
