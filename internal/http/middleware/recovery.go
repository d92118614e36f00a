// README: Recovery middleware; a panicking handler becomes a 500 JSON error.
package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"itinerary/internal/logger"
)

func Recovery(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				log.Error("panic recovered", "panic", r, "path", c.Request.URL.Path, "request_id", RequestIDFrom(c))
				if c.Writer.Written() {
					c.Abort()
					return
				}
				abortError(c, http.StatusInternalServerError, "Internal error", "internal", "unexpected server error")
			}
		}()
		c.Next()
	}
}
