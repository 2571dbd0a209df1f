package catalog

import (
	"fmt"
	"net/http"

	"github.com/pkg/errors"
)

// Kind is the machine readable code carried by every catalog error.
type Kind string

const (
	KindValidation      Kind = "VALIDATION_ERROR"
	KindNotFound        Kind = "NOT_FOUND"
	KindConflict        Kind = "CONFLICT"
	KindIndexOutOfRange Kind = "INDEX_OUT_OF_RANGE"
	KindStorage         Kind = "STORAGE_ERROR"
	KindAuthRequired    Kind = "AUTH_REQUIRED"
	KindForbidden       Kind = "FORBIDDEN"
	KindRateLimited     Kind = "RATE_LIMITED"
	KindInternal        Kind = "INTERNAL_ERROR"
)

// Error is the structured error returned by every public catalog operation.
type Error struct {
	Kind    Kind
	Message string
	Details []string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Status returns the HTTP status code for the error kind.
func (e *Error) Status() int {
	switch e.Kind {
	case KindValidation, KindIndexOutOfRange:
		return http.StatusBadRequest
	case KindAuthRequired:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	case KindRateLimited:
		return http.StatusTooManyRequests
	case KindStorage:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func Validation(message string, details ...string) *Error {
	return &Error{Kind: KindValidation, Message: message, Details: details}
}

// NotFound reports a missing entity, e.g. NotFound("category", "computers").
func NotFound(entity, ref string) *Error {
	return &Error{
		Kind:    KindNotFound,
		Message: fmt.Sprintf("%s not found", entity),
		Details: []string{fmt.Sprintf("%s %q does not exist", entity, ref)},
	}
}

func Conflict(message string, details ...string) *Error {
	return &Error{Kind: KindConflict, Message: message, Details: details}
}

func IndexOutOfRange(index, length int) *Error {
	return &Error{
		Kind:    KindIndexOutOfRange,
		Message: "image index out of range",
		Details: []string{fmt.Sprintf("index %d is outside a list of %d images", index, length)},
	}
}

func Storage(message string, err error) *Error {
	return &Error{Kind: KindStorage, Message: message, Err: err}
}

func Internal(message string, err error) *Error {
	return &Error{Kind: KindInternal, Message: message, Err: err}
}

func AuthRequired(details ...string) *Error {
	return &Error{Kind: KindAuthRequired, Message: "authentication required", Details: details}
}

func Forbidden(details ...string) *Error {
	return &Error{Kind: KindForbidden, Message: "access denied", Details: details}
}

func RateLimited(retryIn string) *Error {
	return &Error{Kind: KindRateLimited, Message: "too many requests", Details: []string{"try again in " + retryIn}}
}

// As extracts a catalog error from err's chain.
func As(err error) (*Error, bool) {
	var ce *Error
	if errors.As(err, &ce) {
		return ce, true
	}
	return nil, false
}

// KindOf returns the kind of err, KindInternal for anything that is not a catalog error.
func KindOf(err error) Kind {
	if ce, ok := As(err); ok {
		return ce.Kind
	}
	return KindInternal
}

func IsKind(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}
