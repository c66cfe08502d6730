// Package apperror defines the error kinds the catalog reports to clients.
package apperror

import "errors"

// Kind classifies an error for the response envelope.
type Kind int

const (
	KindInternal Kind = iota
	KindInvalidInput
	KindUnauthorized
	KindForbidden
	KindNotFound
	KindStore
)

func (k Kind) String() string {
	switch k {
	case KindInvalidInput:
		return "invalid_input"
	case KindUnauthorized:
		return "unauthorized"
	case KindForbidden:
		return "forbidden"
	case KindNotFound:
		return "not_found"
	case KindStore:
		return "store"
	default:
		return "internal"
	}
}

// Error carries a client-facing message together with its kind.
// When Message is empty the wrapped error's text is used verbatim.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Kind.String()
}

func (e *Error) Unwrap() error { return e.Err }

func InvalidInput(msg string) *Error { return &Error{Kind: KindInvalidInput, Message: msg} }

func Unauthorized(msg string) *Error { return &Error{Kind: KindUnauthorized, Message: msg} }

func Forbidden(msg string) *Error { return &Error{Kind: KindForbidden, Message: msg} }

func NotFound(msg string) *Error { return &Error{Kind: KindNotFound, Message: msg} }

// Store wraps a failed query; the driver message reaches the client unchanged.
func Store(err error) *Error { return &Error{Kind: KindStore, Err: err} }

// KindOf returns the kind of err, or KindInternal for foreign errors.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}
