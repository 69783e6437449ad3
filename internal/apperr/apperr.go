// Package apperr defines the error kinds shared by the catalog, library,
// lists and user packages. Callers pick an HTTP status from the Kind
// without the core knowing about HTTP.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an error.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindConflict
	KindNotFound
	KindForbidden
	KindUnauthorized
	// KindUnavailable means a catalog source is not configured.
	KindUnavailable
	KindUpstreamAuth
	KindUpstreamNotFound
	KindUpstreamRateLimited
	KindUpstreamTransport
)

var kindNames = map[Kind]string{
	KindInternal:            "internal",
	KindValidation:          "validation",
	KindConflict:            "conflict",
	KindNotFound:            "not_found",
	KindForbidden:           "forbidden",
	KindUnauthorized:        "unauthorized",
	KindUnavailable:         "unavailable",
	KindUpstreamAuth:        "upstream_auth",
	KindUpstreamNotFound:    "upstream_not_found",
	KindUpstreamRateLimited: "upstream_rate_limited",
	KindUpstreamTransport:   "upstream_transport",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return "unknown"
}

// IsUpstream reports whether the kind describes an external catalog failure.
func (k Kind) IsUpstream() bool {
	switch k {
	case KindUpstreamAuth, KindUpstreamNotFound, KindUpstreamRateLimited, KindUpstreamTransport:
		return true
	}
	return false
}

// Error is a classified error with a human-readable message.
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

// Is matches another *Error by kind, so sentinels such as ErrNotFound work
// with errors.Is.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Message == "" && t.Err == nil && t.Kind == e.Kind
}

// Sentinels for errors.Is checks.
var (
	ErrValidation          = &Error{Kind: KindValidation}
	ErrConflict            = &Error{Kind: KindConflict}
	ErrNotFound            = &Error{Kind: KindNotFound}
	ErrForbidden           = &Error{Kind: KindForbidden}
	ErrUnauthorized        = &Error{Kind: KindUnauthorized}
	ErrUnavailable         = &Error{Kind: KindUnavailable}
	ErrUpstreamAuth        = &Error{Kind: KindUpstreamAuth}
	ErrUpstreamNotFound    = &Error{Kind: KindUpstreamNotFound}
	ErrUpstreamRateLimited = &Error{Kind: KindUpstreamRateLimited}
	ErrUpstreamTransport   = &Error{Kind: KindUpstreamTransport}
)

// New creates an error of the given kind.
func New(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap classifies err under kind.
func Wrap(kind Kind, err error, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Err: err}
}

// Validation is shorthand for New(KindValidation, ...).
func Validation(format string, args ...any) *Error {
	return New(KindValidation, format, args...)
}

// NotFound is shorthand for New(KindNotFound, ...).
func NotFound(format string, args ...any) *Error {
	return New(KindNotFound, format, args...)
}

// Conflict is shorthand for New(KindConflict, ...).
func Conflict(format string, args ...any) *Error {
	return New(KindConflict, format, args...)
}

// KindOf returns the kind of the first *Error in err's chain, or
// KindInternal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// MessageOf returns the message of the first *Error in err's chain.
func MessageOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return ""
}

// Retryable reports whether retrying the same request later could succeed.
func Retryable(err error) bool {
	switch KindOf(err) {
	case KindUpstreamAuth, KindUpstreamRateLimited, KindUpstreamTransport:
		return true
	}
	return false
}

// FromUpstreamStatus classifies a non-2xx response from a catalog source.
func FromUpstreamStatus(source string, status int) *Error {
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return New(KindUpstreamAuth, "%s rejected credentials (status %d)", source, status)
	case status == http.StatusNotFound:
		return New(KindUpstreamNotFound, "%s has no such item", source)
	case status == http.StatusTooManyRequests:
		return New(KindUpstreamRateLimited, "%s rate limit exceeded", source)
	default:
		return New(KindUpstreamTransport, "%s returned status %d", source, status)
	}
}

// HTTPStatus maps a kind to the HTTP status shown to clients.
func HTTPStatus(kind Kind) int {
	switch kind {
	case KindValidation:
		return http.StatusBadRequest
	case KindConflict:
		return http.StatusConflict
	case KindNotFound, KindUpstreamNotFound:
		return http.StatusNotFound
	case KindForbidden:
		return http.StatusForbidden
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindUnavailable, KindUpstreamAuth:
		return http.StatusServiceUnavailable
	case KindUpstreamRateLimited:
		return http.StatusTooManyRequests
	case KindUpstreamTransport:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
