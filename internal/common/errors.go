package common

import (
	"errors"
	"net/http"
)

// Canonical error codes returned in the API error envelope.
const (
	CodeBadRequest       = "BAD_REQUEST"
	CodeValidation       = "VALIDATION_FAILED"
	CodeNotFound         = "NOT_FOUND"
	CodeConfirmRequired  = "CONFIRMATION_REQUIRED"
	CodeStorage          = "STORAGE_UNAVAILABLE"
	CodeInternal         = "INTERNAL"
	CodeHistoryPersisted = "HISTORY_PERSIST_FAILED"
)

// AppError represents an error with an attached code and HTTP status.
type AppError struct {
	Code       string
	Message    string
	HTTPStatus int
	Err        error
	Details    any
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Message
}

// Unwrap allows errors.Is/As to inspect the underlying error.
func (e *AppError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// NewAppError constructs an AppError.
func NewAppError(code, message string, status int, err error) *AppError {
	return &AppError{Code: code, Message: message, HTTPStatus: status, Err: err}
}

// WithDetails attaches structured details rendered alongside the message.
func (e *AppError) WithDetails(details any) *AppError {
	e.Details = details
	return e
}

// BadRequest builds a 400 error.
func BadRequest(message string, err error) *AppError {
	return NewAppError(CodeBadRequest, message, http.StatusBadRequest, err)
}

// NotFound builds a 404 error.
func NotFound(message string, err error) *AppError {
	return NewAppError(CodeNotFound, message, http.StatusNotFound, err)
}

// AsAppError extracts an AppError from err, wrapping unknown errors as internal.
func AsAppError(err error) *AppError {
	var target *AppError
	if errors.As(err, &target) {
		return target
	}
	return NewAppError(CodeInternal, "internal error", http.StatusInternalServerError, err)
}

// IsAppError checks whether the error is an AppError.
func IsAppError(err error) bool {
	var target *AppError
	return errors.As(err, &target)
}
