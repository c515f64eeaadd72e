package apperrors

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies a failure so that callers can react to it without
// parsing messages. The string value doubles as the API error code.
type Kind string

const (
	KindValidation         Kind = "VALIDATION_ERROR"
	KindForbidden          Kind = "FORBIDDEN"
	KindNotFound           Kind = "NOT_FOUND"
	KindPreconditionFailed Kind = "PRECONDITION_FAILED"
	KindInvalidTransition  Kind = "INVALID_TRANSITION"
	KindConflict           Kind = "CONFLICT"
	KindStorage            Kind = "DATABASE_ERROR"
)

// Error is the error type returned by the service layer.
type Error struct {
	Kind    Kind        `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
	Err     error       `json:"-"`
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s (%v)", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// WithDetails attaches structured details, such as per-field validation messages.
func (e *Error) WithDetails(details interface{}) *Error {
	e.Details = details
	return e
}

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func Wrap(err error, kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

func Validation(message string) *Error {
	return New(KindValidation, message)
}

func Forbidden(message string) *Error {
	return New(KindForbidden, message)
}

func NotFound(message string) *Error {
	return New(KindNotFound, message)
}

func Precondition(message string) *Error {
	return New(KindPreconditionFailed, message)
}

func InvalidTransition(message string) *Error {
	return New(KindInvalidTransition, message)
}

func Conflict(message string) *Error {
	return New(KindConflict, message)
}

// Storage wraps a persistence failure. The cause is kept for logs but never
// rendered to API clients.
func Storage(err error, message string) *Error {
	return Wrap(err, KindStorage, message)
}

// As returns the *Error in err's chain, if any.
func As(err error) (*Error, bool) {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// KindOf returns the kind of err, or the empty Kind when err is not an *Error.
func KindOf(err error) Kind {
	if appErr, ok := As(err); ok {
		return appErr.Kind
	}
	return ""
}

func IsKind(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// HTTPStatus maps a kind onto the response status used by the API.
func HTTPStatus(kind Kind) int {
	switch kind {
	case KindValidation:
		return http.StatusBadRequest
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindPreconditionFailed:
		return http.StatusUnprocessableEntity
	case KindInvalidTransition, KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
