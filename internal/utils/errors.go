package utils

import (
	"errors"
	"fmt"
)

// ErrorKind classifies application errors so handlers can map them to HTTP
// statuses without inspecting messages.
type ErrorKind int

const (
	KindValidation ErrorKind = iota + 1
	KindConflict
	KindForbidden
	KindNotFound
	KindPricing
	KindInternal
)

// AppError is the error type surfaced by services. Code is a stable machine
// code, Message is human-readable, Details optionally carries a structured
// payload (e.g. the full list of failing checkout lines).
type AppError struct {
	Kind    ErrorKind
	Code    string
	Message string
	Details interface{}
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error { return e.Err }

// Validation builds a 400-class input error.
func Validation(code, message string) *AppError {
	return &AppError{Kind: KindValidation, Code: code, Message: message}
}

// ValidationWithDetails builds a 400-class input error carrying a structured
// list of failures.
func ValidationWithDetails(code, message string, details interface{}) *AppError {
	return &AppError{Kind: KindValidation, Code: code, Message: message, Details: details}
}

// Conflict builds a 409-class state-precondition error.
func Conflict(code, message string) *AppError {
	return &AppError{Kind: KindConflict, Code: code, Message: message}
}

// Forbidden builds a 403-class ownership/role error.
func Forbidden(code, message string) *AppError {
	return &AppError{Kind: KindForbidden, Code: code, Message: message}
}

// NotFound builds a 404-class error.
func NotFound(code, message string) *AppError {
	return &AppError{Kind: KindNotFound, Code: code, Message: message}
}

// Pricing builds a price-resolution error (no tier exists for the material).
func Pricing(code, message string) *AppError {
	return &AppError{Kind: KindPricing, Code: code, Message: message}
}

// Internal wraps an unexpected error.
func Internal(err error) *AppError {
	return &AppError{Kind: KindInternal, Code: "INTERNAL_ERROR", Message: "internal error", Err: err}
}

// KindOf returns the kind of err, or KindInternal for foreign errors.
func KindOf(err error) ErrorKind {
	var ae *AppError
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return KindInternal
}

// AsAppError extracts an *AppError from err, wrapping foreign errors as
// internal.
func AsAppError(err error) *AppError {
	var ae *AppError
	if errors.As(err, &ae) {
		return ae
	}
	return Internal(err)
}
