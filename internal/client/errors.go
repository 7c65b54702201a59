package client

import (
	"fmt"
	"net/http"
	"sort"
	"strings"

	"github.com/duynhne/loaner-service/internal/session"
)

// Kind classifies a failed call.
type Kind int

const (
	KindServer Kind = iota
	KindInvalidCredentials
	KindUnauthorized
	KindForbidden
	KindNotFound
	KindValidation
	KindConflict
	KindRateLimited
	KindNetwork
)

func (k Kind) String() string {
	switch k {
	case KindInvalidCredentials:
		return "invalid credentials"
	case KindUnauthorized:
		return "unauthorized"
	case KindForbidden:
		return "forbidden"
	case KindNotFound:
		return "not found"
	case KindValidation:
		return "validation failed"
	case KindConflict:
		return "conflict"
	case KindRateLimited:
		return "rate limited"
	case KindNetwork:
		return "network error"
	default:
		return "server error"
	}
}

// Error is returned for every failed call. Compare kinds with errors.Is
// against the Err* values.
type Error struct {
	Kind Kind

	// Status is the HTTP status code, 0 for network errors.
	Status int

	// Message is the server's error text.
	Message string

	// Fields maps request fields to validation messages.
	Fields map[string]string

	err error
}

// Kind sentinels for errors.Is.
var (
	ErrInvalidCredentials = &Error{Kind: KindInvalidCredentials}
	ErrUnauthorized       = &Error{Kind: KindUnauthorized}
	ErrForbidden          = &Error{Kind: KindForbidden}
	ErrNotFound           = &Error{Kind: KindNotFound}
	ErrValidation         = &Error{Kind: KindValidation}
	ErrConflict           = &Error{Kind: KindConflict}
	ErrRateLimited        = &Error{Kind: KindRateLimited}
	ErrServer             = &Error{Kind: KindServer}
	ErrNetwork            = &Error{Kind: KindNetwork}
)

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.Kind.String())
	if e.Status != 0 {
		fmt.Fprintf(&b, " (HTTP %d)", e.Status)
	}
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	if e.err != nil {
		b.WriteString(": ")
		b.WriteString(e.err.Error())
	}

	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(&b, "; %s %s", k, e.Fields[k])
	}
	return b.String()
}

// Is matches any *Error of the same kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

// Unwrap exposes the transport error of network failures. Credential
// rejections unwrap to session.ErrInvalidCredentials.
func (e *Error) Unwrap() error {
	if e.Kind == KindInvalidCredentials {
		return session.ErrInvalidCredentials
	}
	return e.err
}

// retryable reports whether a repeat of the same idempotent request may
// succeed.
func (e *Error) retryable() bool {
	return e.Kind == KindNetwork || e.Kind == KindServer
}

// kindForStatus maps a non-2xx status to a Kind.
func kindForStatus(status int) Kind {
	switch status {
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return KindValidation
	case http.StatusUnauthorized:
		return KindUnauthorized
	case http.StatusForbidden:
		return KindForbidden
	case http.StatusNotFound:
		return KindNotFound
	case http.StatusConflict:
		return KindConflict
	case http.StatusTooManyRequests:
		return KindRateLimited
	default:
		return KindServer
	}
}
