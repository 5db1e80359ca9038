// Package apperr defines the client-facing error type shared by the service,
// storage and HTTP layers. An AppError never carries a human sentence: it
// carries a stable code plus a message key that the HTTP boundary localizes.
package apperr

import (
	"errors"
	"net/http"
)

// Stable error codes. Clients may switch on these; they never change with language.
const (
	CodeValidation        = "VALIDATION_ERROR"
	CodeSplitSumMismatch  = "SPLIT_SUM_MISMATCH"
	CodeSplitPercentage   = "SPLIT_PERCENTAGE_INVALID"
	CodeSplitCount        = "SPLIT_COUNT_MISMATCH"
	CodeSplitType         = "SPLIT_TYPE_INVALID"
	CodeExpenseNotFound   = "EXPENSE_NOT_FOUND"
	CodeReferenceNotFound = "EXPENSE_REFERENCE_NOT_FOUND"
	CodeInvalidID         = "INVALID_ID"
	CodeInvalidJSON       = "INVALID_JSON"
	CodeUserNotFound      = "USER_NOT_FOUND"
)

// FieldError describes one structural problem with a request field.
type FieldError struct {
	Field      string
	MessageKey string
	Params     map[string]string
}

type AppError struct {
	Code       string
	MessageKey string
	Params     map[string]string
	Status     int
	Fields     []FieldError
	Err        error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return e.Code + ": " + e.Err.Error()
	}
	return e.Code
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Is matches on Code so callers can compare against the sentinel values below
// even when the returned error carries params or a cause.
func (e *AppError) Is(target error) bool {
	var t *AppError
	if !errors.As(target, &t) {
		return false
	}
	return t.Code == e.Code
}

// WithParams returns a copy of e carrying message interpolation params.
func (e *AppError) WithParams(params map[string]string) *AppError {
	cp := *e
	cp.Params = params
	return &cp
}

// Wrap returns a copy of e carrying cause.
func (e *AppError) Wrap(cause error) *AppError {
	cp := *e
	cp.Err = cause
	return &cp
}

var (
	ErrSplitSumMismatch  = New(CodeSplitSumMismatch, "EXPENSE.SPLIT_SUM_MISMATCH", http.StatusBadRequest)
	ErrSplitPercentage   = New(CodeSplitPercentage, "EXPENSE.SPLIT_PERCENTAGE_INVALID", http.StatusBadRequest)
	ErrSplitCount        = New(CodeSplitCount, "EXPENSE.SPLIT_COUNT_MISMATCH", http.StatusBadRequest)
	ErrSplitType         = New(CodeSplitType, "EXPENSE.SPLIT_TYPE_INVALID", http.StatusBadRequest)
	ErrExpenseNotFound   = New(CodeExpenseNotFound, "EXPENSE.NOT_FOUND", http.StatusNotFound)
	ErrReferenceNotFound = New(CodeReferenceNotFound, "EXPENSE.REFERENCE_NOT_FOUND", http.StatusNotFound)
	ErrInvalidID         = New(CodeInvalidID, "GENERAL.INVALID_ID", http.StatusBadRequest)
	ErrInvalidJSON       = New(CodeInvalidJSON, "GENERAL.INVALID_JSON", http.StatusBadRequest)
	ErrUserNotFound      = New(CodeUserNotFound, "USER.NOT_FOUND", http.StatusNotFound)
)

func New(code, messageKey string, status int) *AppError {
	return &AppError{Code: code, MessageKey: messageKey, Status: status}
}

// Validation builds a structural validation error from field-level problems.
func Validation(fields ...FieldError) *AppError {
	return &AppError{
		Code:       CodeValidation,
		MessageKey: "GENERAL.VALIDATION_FAILED",
		Status:     http.StatusBadRequest,
		Fields:     fields,
	}
}

// As extracts an *AppError from err's chain.
func As(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}
