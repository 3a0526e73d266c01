// Package apperr holds the error kinds the HTTP layer knows how to render.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

type Kind string

const (
	KindValidation   Kind = "validation"
	KindNotFound     Kind = "not_found"
	KindUnauthorized Kind = "unauthorized"
	KindForbidden    Kind = "forbidden"
	KindDuplicate    Kind = "duplicate"
	KindUpload       Kind = "upload"
	KindRateLimited  Kind = "rate_limited"
	KindInternal     Kind = "internal"
)

var statusByKind = map[Kind]int{
	KindValidation:   http.StatusBadRequest,
	KindNotFound:     http.StatusNotFound,
	KindUnauthorized: http.StatusUnauthorized,
	KindForbidden:    http.StatusForbidden,
	KindDuplicate:    http.StatusBadRequest,
	KindUpload:       http.StatusBadRequest,
	KindRateLimited:  http.StatusTooManyRequests,
	KindInternal:     http.StatusInternalServerError,
}

// Error is a domain error with a message that is safe to show to clients.
type Error struct {
	Kind    Kind
	Message string
	Fields  map[string]string // per-field messages for validation errors
	Err     error             // cause, never rendered
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

func (e *Error) Status() int {
	if s, ok := statusByKind[e.Kind]; ok {
		return s
	}
	return http.StatusInternalServerError
}

func New(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func Validation(format string, args ...any) *Error {
	return New(KindValidation, format, args...)
}

// ValidationFields builds a validation error whose message lists every field message
// in the order given by keys.
func ValidationFields(fields map[string]string, keys []string) *Error {
	msgs := make([]string, 0, len(keys))
	for _, k := range keys {
		msgs = append(msgs, fields[k])
	}
	return &Error{Kind: KindValidation, Message: strings.Join(msgs, ", "), Fields: fields}
}

func NotFound(format string, args ...any) *Error { return New(KindNotFound, format, args...) }

// BadID is the cast-error case: an id that is not a valid ObjectID.
func BadID(id string) *Error {
	return New(KindNotFound, "Resource not found with id of %s", id)
}

func Unauthorized(format string, args ...any) *Error {
	return New(KindUnauthorized, format, args...)
}

func Forbidden(format string, args ...any) *Error { return New(KindForbidden, format, args...) }

func Duplicate(format string, args ...any) *Error { return New(KindDuplicate, format, args...) }

func Upload(format string, args ...any) *Error { return New(KindUpload, format, args...) }

func Internal(err error, format string, args ...any) *Error {
	e := New(KindInternal, format, args...)
	e.Err = err
	return e
}

// As extracts an *Error from err's chain.
func As(err error) (*Error, bool) {
	var ae *Error
	if errors.As(err, &ae) {
		return ae, true
	}
	return nil, false
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	ae, ok := As(err)
	return ok && ae.Kind == kind
}
