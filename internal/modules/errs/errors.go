// Package errs holds the error taxonomy shared by the removal pipeline, the pdf
// compressor and the http layer.
package errs

import (
	"errors"
	"fmt"
)

type Kind string

const (
	KindUnconfigured          Kind = "unconfigured"
	KindUnknownProvider       Kind = "unknown_provider"
	KindRateLimited           Kind = "rate_limited"
	KindPaymentRequired       Kind = "payment_required"
	KindProviderFailure       Kind = "provider_failure"
	KindSizeExceeded          Kind = "size_exceeded"
	KindAllProvidersFailed    Kind = "all_providers_failed"
	KindToolInvocationFailure Kind = "tool_invocation_failure"
	KindDecodeError           Kind = "decode_error"
	KindCompositeError        Kind = "composite_error"
)

func (k Kind) String() string {
	return string(k)
}

type Error struct {
	Kind       Kind
	Provider   string
	StatusCode int
	Message    string
	Err        error
}

func (e *Error) Error() string {
	msg := string(e.Kind)
	if e.Provider != "" {
		msg += " [" + e.Provider + "]"
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches any *Error of the same kind, so the package sentinels work with errors.Is.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

var (
	Unconfigured          = &Error{Kind: KindUnconfigured}
	UnknownProvider       = &Error{Kind: KindUnknownProvider}
	RateLimited           = &Error{Kind: KindRateLimited}
	PaymentRequired       = &Error{Kind: KindPaymentRequired}
	ProviderFailure       = &Error{Kind: KindProviderFailure}
	SizeExceeded          = &Error{Kind: KindSizeExceeded}
	AllProvidersFailed    = &Error{Kind: KindAllProvidersFailed}
	ToolInvocationFailure = &Error{Kind: KindToolInvocationFailure}
	DecodeError           = &Error{Kind: KindDecodeError}
	CompositeError        = &Error{Kind: KindCompositeError}
)

func New(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func Wrap(kind Kind, err error, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Err: err}
}

func ForProvider(kind Kind, provider string, statusCode int, message string) *Error {
	return &Error{Kind: kind, Provider: provider, StatusCode: statusCode, Message: message}
}

// KindOf returns the kind of the first *Error in err's chain, or "" if there is none.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}
