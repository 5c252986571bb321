package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// kind is a sentinel error class. A kind may refine a parent kind, so that
// errors.Is(ErrInvalidReorder, ErrValidation) holds.
type kind struct {
	name   string
	parent *kind
}

func (k *kind) Error() string {
	return k.name
}

func (k *kind) Is(target error) bool {
	for p := k.parent; p != nil; p = p.parent {
		if p == target {
			return true
		}
	}
	return false
}

var (
	ErrValidation      = &kind{name: "validation error"}
	ErrConflict        = &kind{name: "conflict"}
	ErrInvalidDuration = &kind{name: "invalid duration", parent: ErrValidation}
	ErrNotFound        = &kind{name: "not found"}
	ErrUnauthorized    = &kind{name: "unauthorized"}
	ErrForbidden       = &kind{name: "forbidden"}
	ErrInvalidReorder  = &kind{name: "invalid reorder", parent: ErrValidation}
	ErrLastGym         = &kind{name: "cannot delete last gym", parent: ErrConflict}
)

// Error is an operation-scoped error of a given kind.
type Error struct {
	Op   string
	Kind error
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	msg := e.Kind.Error()
	if e.Msg != "" {
		msg = fmt.Sprintf("%s: %s", msg, e.Msg)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	if e.Op != "" {
		return e.Op + ": " + msg
	}
	return msg
}

func (e *Error) Unwrap() []error {
	if e.Err != nil {
		return []error{e.Kind, e.Err}
	}
	return []error{e.Kind}
}

func New(op string, kind error, format string, args ...any) error {
	return &Error{Op: op, Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

func Wrap(op string, kind error, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Op: op, Kind: kind, Err: err}
}

func Validation(op, format string, args ...any) error {
	return New(op, ErrValidation, format, args...)
}

func NotFound(op, resource string) error {
	return &Error{Op: op, Kind: ErrNotFound, Msg: resource}
}

func Conflict(op, format string, args ...any) error {
	return New(op, ErrConflict, format, args...)
}

// HTTPStatus maps an error to the status code a handler should respond with.
func HTTPStatus(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrConflict):
		return http.StatusConflict
	case errors.Is(err, ErrValidation):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// IsClientError reports whether err is one of the kinds caused by caller input.
func IsClientError(err error) bool {
	return HTTPStatus(err) < http.StatusInternalServerError
}

func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
