package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"
)

const (
	// HeaderWarnings carries soft validation and day-sequence warning codes.
	HeaderWarnings = "X-Itinerary-Warnings"
	// HeaderQuotaRemaining is the caller's generations left this month.
	HeaderQuotaRemaining = "X-Quota-Remaining"
)

const (
	HeaderRequestID = "X-Request-Id"
	headerTraceID   = "X-Trace-Id"
	requestIDKey    = "request_id"
	traceIDKey      = "trace_id"
)

// RequestID echoes or mints X-Request-Id and exposes the active trace id.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		reqID := strings.TrimSpace(c.GetHeader(HeaderRequestID))
		if reqID == "" || len(reqID) > 128 {
			reqID = uuid.NewString()
		}
		c.Set(requestIDKey, reqID)
		c.Writer.Header().Set(HeaderRequestID, reqID)

		if sc := trace.SpanContextFromContext(c.Request.Context()); sc.HasTraceID() {
			traceID := sc.TraceID().String()
			c.Set(traceIDKey, traceID)
			c.Writer.Header().Set(headerTraceID, traceID)
		}
		c.Next()
	}
}

func RequestIDFrom(c *gin.Context) string {
	return c.GetString(requestIDKey)
}
