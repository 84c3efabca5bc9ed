package utils

import (
	"fmt"
	"net/http"
)

// AppError represents an application error
type AppError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap implements the unwrap interface
func (e *AppError) Unwrap() error {
	return e.Err
}

// NewAppError creates a new AppError
func NewAppError(code int, message string, err error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// ValidationErr creates a 400 error for missing or malformed input
func ValidationErr(message string, err error) *AppError {
	return NewAppError(http.StatusBadRequest, message, err)
}

// NotFoundErr creates a 404 error for an unknown resource
func NotFoundErr(message string) *AppError {
	return NewAppError(http.StatusNotFound, message, nil)
}

// ConflictErr creates a 409 error, e.g. for a duplicate coupon code
func ConflictErr(message string) *AppError {
	return NewAppError(http.StatusConflict, message, nil)
}

// AuthenticityErr creates a 400 error for a failed signature check
func AuthenticityErr(message string, err error) *AppError {
	return NewAppError(http.StatusBadRequest, message, err)
}

// InfrastructureErr creates a 500 error for store or provider failures.
// Safe for the caller to retry.
func InfrastructureErr(message string, err error) *AppError {
	return NewAppError(http.StatusInternalServerError, message, err)
}

// GetAppError returns the AppError if the error is an AppError
func GetAppError(err error) *AppError {
	if appErr, ok := err.(*AppError); ok {
		return appErr
	}
	return nil
}
