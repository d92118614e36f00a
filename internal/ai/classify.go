package ai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/googleapis/gax-go/v2/apierror"
	"google.golang.org/api/googleapi"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"itinerary/internal/modules/itinerary"
)

// statusError is a non-2xx reply from an HTTP model endpoint.
type statusError struct {
	StatusCode int
	Message    string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("status %d: %s", e.StatusCode, e.Message)
}

// classify maps a provider failure onto the itinerary error taxonomy.
// Order: already classified, context, HTTP status, gRPC code, message text.
func classify(provider string, err error) error {
	if err == nil {
		return nil
	}
	if itinerary.KindOf(err) != "" {
		return err
	}
	prefix := provider + ": "

	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return &itinerary.UpstreamError{Msg: prefix + "model request timed out", Err: err}
	case errors.Is(err, context.Canceled):
		return &itinerary.UpstreamError{Msg: prefix + "model request cancelled", Err: err}
	}

	var se *statusError
	if errors.As(err, &se) {
		if e := fromHTTPStatus(prefix, se.StatusCode, se.Message, err); e != nil {
			return e
		}
	}
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		if e := fromHTTPStatus(prefix, gerr.Code, gerr.Message, err); e != nil {
			return e
		}
	}
	var aerr *apierror.APIError
	if errors.As(err, &aerr) {
		if e := fromHTTPStatus(prefix, aerr.HTTPCode(), aerr.Error(), err); e != nil {
			return e
		}
		if st := aerr.GRPCStatus(); st != nil {
			if e := fromGRPCCode(prefix, st.Code(), st.Message(), err); e != nil {
				return e
			}
		}
	}
	if st, ok := status.FromError(err); ok && st.Code() != codes.OK && st.Code() != codes.Unknown {
		if e := fromGRPCCode(prefix, st.Code(), st.Message(), err); e != nil {
			return e
		}
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "api key") || strings.Contains(msg, "api_key") || strings.Contains(msg, "unauthorized"):
		return &itinerary.AuthError{Msg: prefix + "invalid or missing API key", Err: err}
	case strings.Contains(msg, "rate limit") || strings.Contains(msg, "resource_exhausted") || strings.Contains(msg, "quota"):
		return &itinerary.RateLimitError{Msg: prefix + "too many requests, try again later", Err: err}
	}
	return &itinerary.UpstreamError{Msg: prefix + "model request failed", Err: err}
}

func fromHTTPStatus(prefix string, code int, msg string, err error) error {
	switch code {
	case http.StatusUnauthorized, http.StatusForbidden:
		return &itinerary.AuthError{Msg: prefix + "credential rejected: " + msg, Err: err}
	case http.StatusTooManyRequests:
		return &itinerary.RateLimitError{Msg: prefix + "rate limited: " + msg, Err: err}
	}
	if code >= 400 {
		return &itinerary.UpstreamError{Msg: fmt.Sprintf("%supstream status %d", prefix, code), Err: err}
	}
	return nil
}

func fromGRPCCode(prefix string, code codes.Code, msg string, err error) error {
	switch code {
	case codes.Unauthenticated, codes.PermissionDenied:
		return &itinerary.AuthError{Msg: prefix + "credential rejected: " + msg, Err: err}
	case codes.ResourceExhausted:
		return &itinerary.RateLimitError{Msg: prefix + "rate limited: " + msg, Err: err}
	case codes.DeadlineExceeded:
		return &itinerary.UpstreamError{Msg: prefix + "model request timed out", Err: err}
	}
	return nil
}
