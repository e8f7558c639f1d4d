package apperrors

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ErrNotFound indicates that a requested resource could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")

// ErrDuplicate indicates that an attempt was made to create a resource that already exists.
var ErrDuplicate = errors.New("resource already exists")

// ErrConflict indicates that the request raced another writer or hit a state that a
// re-read may resolve. Callers may retry after re-querying.
var ErrConflict = errors.New("conflict")

// ErrForbidden indicates the acting user may not perform the operation.
var ErrForbidden = errors.New("forbidden")

// ErrInternal is an opaque storage or infrastructure failure.
var ErrInternal = errors.New("internal error")

// AppError carries an HTTP-ish code and a message alongside the wrapped cause.
type AppError struct {
	Code    int
	Message string
	Err     error
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

// Is lets errors.Is match the sentinel implied by the code when the wrapped cause
// does not already carry one.
func (e *AppError) Is(target error) bool {
	switch e.Code {
	case http.StatusNotFound:
		return target == ErrNotFound
	case http.StatusBadRequest:
		return target == ErrValidation
	case http.StatusConflict:
		return target == ErrConflict
	case http.StatusForbidden:
		return target == ErrForbidden
	case http.StatusInternalServerError:
		return target == ErrInternal
	}
	return false
}

// NewAppError creates an AppError with the given code, message and cause.
func NewAppError(code int, message string, err error) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}

// NewNotFoundError creates a 404 AppError.
func NewNotFoundError(message string) *AppError {
	return &AppError{Code: http.StatusNotFound, Message: message}
}

// NewValidationError creates a 400 AppError.
func NewValidationError(message string) *AppError {
	return &AppError{Code: http.StatusBadRequest, Message: message}
}

// NewConflictError creates a 409 AppError wrapping the storage cause.
func NewConflictError(message string, err error) *AppError {
	return &AppError{Code: http.StatusConflict, Message: message, Err: err}
}

// PostingError reports the outcome of a failed ledger batch. Committed is only ever true
// when Uncertain is false and the batch is known to be durable; Uncertain means the
// commit itself failed and the caller must re-query by payment session before retrying.
type PostingError struct {
	Committed bool
	Uncertain bool
	EntryIDs  []string
	Err       error
}

func (e *PostingError) Error() string {
	state := "nothing committed"
	switch {
	case e.Uncertain:
		state = "commit outcome unknown"
	case e.Committed:
		state = "committed"
	}
	msg := fmt.Sprintf("ledger posting failed (%s", state)
	if len(e.EntryIDs) > 0 {
		msg += ", entries " + strings.Join(e.EntryIDs, ",")
	}
	msg += ")"
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *PostingError) Unwrap() error {
	return e.Err
}

// IsUncertain reports whether err carries a PostingError whose outcome is unknown.
func IsUncertain(err error) bool {
	var pe *PostingError
	return errors.As(err, &pe) && pe.Uncertain
}
