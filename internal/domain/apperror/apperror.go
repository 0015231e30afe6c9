package apperror

import (
	"errors"
	"net/http"
)

// Kind is the stable, machine-readable error category clients branch on.
type Kind string

const (
	KindValidation      Kind = "VALIDATION_ERROR"
	KindNotFound        Kind = "NOT_FOUND"
	KindForbidden       Kind = "FORBIDDEN"
	KindDuplicateEmail  Kind = "DUPLICATE_EMAIL"
	KindInvalidCode     Kind = "INVALID_CODE"
	KindAlreadyApplied  Kind = "ALREADY_APPLIED"
	KindInvalidSession  Kind = "INVALID_SESSION"
	KindSessionExpired  Kind = "SESSION_EXPIRED"
	KindRateLimited     Kind = "RATE_LIMITED"
	KindUpstream        Kind = "UPSTREAM_SERVICE_ERROR"
	KindUpstreamTimeout Kind = "UPSTREAM_TIMEOUT"
	KindInternal        Kind = "INTERNAL"
)

// Error carries a Kind, a human readable message and optional field-level hints.
type Error struct {
	Kind    Kind
	Message string
	Fields  map[string]string
	Err     error
}

func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return string(e.Kind)
}

func (e *Error) Unwrap() error { return e.Err }

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// Validation builds a KindValidation error with per-field hints.
func Validation(message string, fields map[string]string) *Error {
	return &Error{Kind: KindValidation, Message: message, Fields: fields}
}

func NotFound(message string) *Error  { return New(KindNotFound, message) }
func Forbidden(message string) *Error { return New(KindForbidden, message) }

// KindOf returns the Kind of the first *Error in err's chain, or KindInternal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// Is reports whether err carries kind.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// FieldsOf returns the field hints of err, if any.
func FieldsOf(err error) map[string]string {
	var e *Error
	if errors.As(err, &e) {
		return e.Fields
	}
	return nil
}

var statuses = map[Kind]int{
	KindValidation:      http.StatusBadRequest,
	KindNotFound:        http.StatusNotFound,
	KindForbidden:       http.StatusForbidden,
	KindDuplicateEmail:  http.StatusConflict,
	KindInvalidCode:     http.StatusBadRequest,
	KindAlreadyApplied:  http.StatusConflict,
	KindInvalidSession:  http.StatusUnauthorized,
	KindSessionExpired:  http.StatusUnauthorized,
	KindRateLimited:     http.StatusTooManyRequests,
	KindUpstream:        http.StatusBadGateway,
	KindUpstreamTimeout: http.StatusGatewayTimeout,
	KindInternal:        http.StatusInternalServerError,
}

// HTTPStatus is the response status for kind.
func HTTPStatus(kind Kind) int {
	if s, ok := statuses[kind]; ok {
		return s
	}
	return http.StatusInternalServerError
}
