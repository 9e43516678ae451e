package apperrors

import (
	"errors"
	"fmt"
)

// ErrNotFound indicates that a requested resource could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")

// ErrDuplicate indicates that an attempt was made to create a resource that already exists.
var ErrDuplicate = errors.New("resource already exists")

// ErrConflict indicates that the resource is not in a state that allows the requested action.
var ErrConflict = errors.New("conflict")

// ErrForbidden indicates that the action is not permitted on the resource.
var ErrForbidden = errors.New("forbidden")

// ErrInternal indicates an unexpected infrastructure failure.
var ErrInternal = errors.New("internal error")

// Journal entry validation failures. Each wraps ErrValidation.
var (
	ErrInsufficientLines = fmt.Errorf("%w: journal entry requires at least two lines", ErrValidation)
	ErrUnbalanced        = fmt.Errorf("%w: total debits do not equal total credits", ErrValidation)
	ErrInvalidLine       = fmt.Errorf("%w: a line must carry exactly one positive amount", ErrValidation)
	ErrAmountPrecision   = fmt.Errorf("%w: amounts carry at most two decimal places", ErrValidation)
	ErrUnknownAccount    = fmt.Errorf("%w: account not found for tenant", ErrValidation)
	ErrInactiveAccount   = fmt.Errorf("%w: account is inactive", ErrValidation)
)

// ErrDuplicateCode is returned when an account code is already used within the tenant.
var ErrDuplicateCode = fmt.Errorf("%w: account code already exists", ErrDuplicate)

// ErrInvalidTransition is returned for any status change other than draft->posted or posted->reversed.
var ErrInvalidTransition = fmt.Errorf("%w: invalid journal entry status transition", ErrConflict)

// System account protections.
var (
	ErrProtectedAccount = fmt.Errorf("%w: system accounts cannot be deleted", ErrForbidden)
	ErrImmutableField   = fmt.Errorf("%w: code and type of a system account cannot change", ErrForbidden)
)

// AppError carries an HTTP-like status code alongside a wrapped cause.
type AppError struct {
	Code    int
	Message string
	Err     error
}

// NewAppError creates a new AppError.
func NewAppError(code int, message string, err error) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}

func (e *AppError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return fmt.Sprintf("%s: %v", e.Message, e.Err)
}

// Unwrap exposes the underlying cause to errors.Is / errors.As.
func (e *AppError) Unwrap() error {
	return e.Err
}
