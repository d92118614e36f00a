package itinerary

import (
	"errors"
	"fmt"
)

// Kind is the stable tag reported to callers with every failure.
type Kind string

const (
	KindValidation        Kind = "validation"
	KindAuth              Kind = "auth"
	KindRateLimit         Kind = "rate_limit"
	KindMalformedResponse Kind = "malformed_response"
	KindUpstream          Kind = "upstream"
)

type kinded interface {
	error
	Kind() Kind
}

// KindOf returns the tag of the first classified error in err's chain, or "".
func KindOf(err error) Kind {
	var k kinded
	if errors.As(err, &k) {
		return k.Kind()
	}
	return ""
}

// ValidationError reports a bad or missing input field.
type ValidationError struct {
	Field string
	Msg   string
}

func (e *ValidationError) Error() string {
	if e.Msg == "" {
		return fmt.Sprintf("invalid %s", e.Field)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Msg)
}

func (e *ValidationError) Kind() Kind { return KindValidation }

// AuthError reports a missing (Missing=true) or rejected model credential.
type AuthError struct {
	Missing bool
	Msg     string
	Err     error
}

func (e *AuthError) Error() string {
	if e.Msg != "" {
		return e.Msg
	}
	if e.Missing {
		return "model credential is not configured"
	}
	return "model credential was rejected"
}

func (e *AuthError) Unwrap() error { return e.Err }
func (e *AuthError) Kind() Kind    { return KindAuth }

// RateLimitError reports upstream throttling. No retry is attempted.
type RateLimitError struct {
	Msg string
	Err error
}

func (e *RateLimitError) Error() string {
	if e.Msg != "" {
		return e.Msg
	}
	return "model rate limit exceeded"
}

func (e *RateLimitError) Unwrap() error { return e.Err }
func (e *RateLimitError) Kind() Kind    { return KindRateLimit }

// MalformedResponseError carries both the raw and the cleaned model text for diagnostics.
type MalformedResponseError struct {
	Raw     string
	Cleaned string
	Err     error
}

func (e *MalformedResponseError) Error() string {
	if e.Err == nil {
		return "model returned data in an unexpected format"
	}
	return fmt.Sprintf("model returned data in an unexpected format: %v", e.Err)
}

func (e *MalformedResponseError) Unwrap() error { return e.Err }
func (e *MalformedResponseError) Kind() Kind    { return KindMalformedResponse }

// UpstreamError is every other model-side failure.
type UpstreamError struct {
	Msg string
	Err error
}

func (e *UpstreamError) Error() string {
	switch {
	case e.Msg != "" && e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Msg, e.Err)
	case e.Msg != "":
		return e.Msg
	case e.Err != nil:
		return e.Err.Error()
	default:
		return "model request failed"
	}
}

func (e *UpstreamError) Unwrap() error { return e.Err }
func (e *UpstreamError) Kind() Kind    { return KindUpstream }
