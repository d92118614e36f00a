// README: Base handler utilities (JSON helpers, error mapping).
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"itinerary/internal/http/middleware"
	"itinerary/internal/logger"
	"itinerary/internal/modules/aiusage"
	"itinerary/internal/modules/history"
	"itinerary/internal/modules/itinerary"
)

type errorResponse struct {
	Error     string `json:"error"`
	Kind      string `json:"kind"`
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`
}

func writeJSON(c *gin.Context, status int, v any) {
	c.JSON(status, v)
}

func writeError(c *gin.Context, status int, title, kind, msg string) {
	writeJSON(c, status, errorResponse{
		Error:     title,
		Kind:      kind,
		Message:   msg,
		RequestID: middleware.RequestIDFrom(c),
	})
}

// writeFailure maps a pipeline error onto a status and logs it once.
func writeFailure(c *gin.Context, log *logger.Logger, err error) {
	status, title, kind, msg := describeError(err)
	fields := []interface{}{"kind", kind, "status", status, "error", err, "request_id", middleware.RequestIDFrom(c)}
	if status >= http.StatusInternalServerError {
		log.Error("request failed", fields...)
	} else {
		log.Warn("request rejected", fields...)
	}
	writeError(c, status, title, kind, msg)
}

func describeError(err error) (status int, title, kind, msg string) {
	var (
		authErr      *itinerary.AuthError
		malformedErr *itinerary.MalformedResponseError
	)
	switch {
	case errors.Is(err, aiusage.ErrQuotaExceeded):
		return http.StatusTooManyRequests, "Quota exceeded", "quota_exceeded", err.Error()
	case errors.Is(err, history.ErrNotFound):
		return http.StatusNotFound, "Not found", "not_found", err.Error()
	case errors.As(err, &authErr):
		if authErr.Missing {
			return http.StatusInternalServerError, "AI service not configured", string(itinerary.KindAuth), authErr.Error()
		}
		return http.StatusUnauthorized, "AI authentication failed", string(itinerary.KindAuth), authErr.Error()
	case errors.As(err, &malformedErr):
		return http.StatusInternalServerError, "Failed to parse AI response", string(itinerary.KindMalformedResponse),
			"The AI returned data in an unexpected format. Please try again."
	}

	switch itinerary.KindOf(err) {
	case itinerary.KindValidation:
		return http.StatusBadRequest, "Invalid request", string(itinerary.KindValidation), err.Error()
	case itinerary.KindRateLimit:
		return http.StatusTooManyRequests, "Rate limit exceeded", string(itinerary.KindRateLimit),
			"The AI service is rate limiting requests. Please try again later."
	case itinerary.KindUpstream:
		return http.StatusInternalServerError, "Failed to generate itinerary", string(itinerary.KindUpstream), err.Error()
	}
	return http.StatusInternalServerError, "Internal error", "internal", "unexpected server error"
}
