package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"itinerary/internal/logger"
	"itinerary/internal/modules/ratelimit"
)

// RateLimit throttles per caller: X-Client-ID when given, otherwise the client IP.
// A failing limiter backend lets the request through.
func RateLimit(limiter ratelimit.Limiter, log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := CallerClientID(c)
		if key == "" {
			key = "ip:" + c.ClientIP()
		}
		ok, err := limiter.Allow(c.Request.Context(), key)
		if err != nil {
			log.Warn("rate limiter unavailable", "key", key, "error", err)
			c.Next()
			return
		}
		if !ok {
			c.Header("Retry-After", "60")
			abortError(c, http.StatusTooManyRequests, "Too many requests", "too_many_requests", "request rate exceeded, try again in a minute")
			return
		}
		c.Next()
	}
}
