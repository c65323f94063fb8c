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

// ErrSessionAlreadyOpen is returned when opening the till while a session is still open.
var ErrSessionAlreadyOpen = errors.New("a till session is already open")

// ErrNoOpenSession is returned when writing to the till with no open session,
// or when the targeted session is not the one currently open.
var ErrNoOpenSession = errors.New("no open till session")

// ErrInvalidAmount marks a non-positive movement amount or a negative counted cash.
var ErrInvalidAmount = fmt.Errorf("%w: invalid amount", ErrValidation)

// ErrStorageFailure matches every error raised by the persistence layer.
var ErrStorageFailure = errors.New("storage failure")

// AppError carries an HTTP-like status code alongside the wrapped cause.
type AppError struct {
	Code    int
	Message string
	Err     error
}

// NewAppError builds an AppError. Codes >= 500 are storage or internal failures.
func NewAppError(code int, message string, err error) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}

func (e *AppError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return e.Message + ": " + e.Err.Error()
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Is lets errors.Is(err, ErrStorageFailure) match server-side AppErrors
// without hiding the driver error they wrap.
func (e *AppError) Is(target error) bool {
	return target == ErrStorageFailure && e.Code >= 500
}
