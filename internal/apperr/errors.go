package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an application error for status mapping and matching
type Kind int

const (
	KindNotFound Kind = iota + 1
	KindForbidden
	KindDuplicateName
	KindInvalidName
	KindProtectedRoot
	KindCyclicMove
	KindStaleSession
	KindValidation
)

// Error is an application error carrying a user-safe message.
// Errors of the same Kind match under errors.Is, so handlers and tests can
// compare against the exported sentinels below.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

// Sentinels for the error taxonomy
var (
	ErrNotFound      = &Error{Kind: KindNotFound, Message: "not found"}
	ErrForbidden     = &Error{Kind: KindForbidden, Message: "forbidden"}
	ErrDuplicateName = &Error{Kind: KindDuplicateName, Message: "a sibling with this name already exists"}
	ErrInvalidName   = &Error{Kind: KindInvalidName, Message: "name must not be empty"}
	ErrProtectedRoot = &Error{Kind: KindProtectedRoot, Message: "the root folder cannot be modified"}
	ErrCyclicMove    = &Error{Kind: KindCyclicMove, Message: "cannot move a folder into one of its subfolders"}
	ErrStaleSession  = &Error{Kind: KindStaleSession, Message: "practice session was modified concurrently, re-fetch the question"}
	ErrValidation    = &Error{Kind: KindValidation, Message: "invalid input"}
)

// NotFound builds a not-found error with a formatted message
func NotFound(format string, args ...any) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

// Forbidden builds a forbidden error with a formatted message
func Forbidden(format string, args ...any) *Error {
	return &Error{Kind: KindForbidden, Message: fmt.Sprintf(format, args...)}
}

// Validation builds a generic validation error with a formatted message
func Validation(format string, args ...any) *Error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

// HTTPStatus maps an error to its HTTP-equivalent status code.
// Unrecognized errors map to 500.
func HTTPStatus(err error) int {
	var ae *Error
	if !errors.As(err, &ae) {
		return http.StatusInternalServerError
	}
	switch ae.Kind {
	case KindNotFound:
		return http.StatusNotFound
	case KindForbidden:
		return http.StatusForbidden
	case KindStaleSession:
		return http.StatusConflict
	case KindDuplicateName, KindInvalidName, KindProtectedRoot, KindCyclicMove, KindValidation:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// UserMessage extracts the user-safe message from an error, falling back to
// a generic message for unexpected failures
func UserMessage(err error) string {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Message
	}
	return "internal server error"
}
