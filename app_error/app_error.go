package app_error

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
)

type Kind string

const (
	KindValidation    Kind = "VALIDATION"
	KindAuthorization Kind = "AUTHORIZATION"
	KindConflict      Kind = "CONFLICT"
	KindNotFound      Kind = "NOT_FOUND"
)

var kindStatus = map[Kind]int{
	KindValidation:    http.StatusBadRequest,
	KindAuthorization: http.StatusForbidden,
	KindConflict:      http.StatusConflict,
	KindNotFound:      http.StatusNotFound,
}

// Error is a classified engine error. The wrapped error carries the human
// readable reason.
type Error struct {
	error
	kind Kind
}

func (e *Error) Unwrap() error {
	return e.error
}

func (e *Error) Kind() Kind {
	return e.kind
}

func (e *Error) HTTPStatus() int {
	return kindStatus[e.kind]
}

func newError(kind Kind, format string, args ...any) error {
	return &Error{error: fmt.Errorf(format, args...), kind: kind}
}

func Validation(format string, args ...any) error {
	return newError(KindValidation, format, args...)
}

func Authorization(format string, args ...any) error {
	return newError(KindAuthorization, format, args...)
}

func Conflict(format string, args ...any) error {
	return newError(KindConflict, format, args...)
}

func NotFound(format string, args ...any) error {
	return newError(KindNotFound, format, args...)
}

// KindOf returns the kind of the first classified error in err's chain.
func KindOf(err error) (Kind, bool) {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.kind, true
	}
	return "", false
}

func Is(err error, kind Kind) bool {
	k, ok := KindOf(err)
	return ok && k == kind
}

func IsValidation(err error) bool    { return Is(err, KindValidation) }
func IsAuthorization(err error) bool { return Is(err, KindAuthorization) }
func IsConflict(err error) bool      { return Is(err, KindConflict) }
func IsNotFound(err error) bool      { return Is(err, KindNotFound) }

func HTTPStatus(err error) int {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.HTTPStatus()
	}
	return http.StatusInternalServerError
}

func WithHTTPStatus(c *gin.Context, err error) {
	body := gin.H{"error": err.Error()}
	if kind, ok := KindOf(err); ok {
		body["kind"] = kind
	}
	c.JSON(HTTPStatus(err), body)
}
