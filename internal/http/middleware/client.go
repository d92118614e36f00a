// README: Caller identity middleware; reads the optional X-Client-ID header.
package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const (
	HeaderClientID = "X-Client-ID"
	clientIDKey    = "client_id"
	maxClientIDLen = 64
)

// ClientID validates X-Client-ID when present and stores it for CallerClientID.
// Requests without the header stay anonymous.
func ClientID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := strings.TrimSpace(c.GetHeader(HeaderClientID))
		if id == "" {
			c.Next()
			return
		}
		if !isValidClientID(id) {
			abortError(c, http.StatusBadRequest, "Invalid request", "validation", "X-Client-ID must be 1-64 letters, digits, '-' or '_'")
			return
		}
		c.Set(clientIDKey, id)
		c.Next()
	}
}

// CallerClientID returns the validated client id, or "" for anonymous callers.
func CallerClientID(c *gin.Context) string {
	return c.GetString(clientIDKey)
}

func isValidClientID(v string) bool {
	if len(v) > maxClientIDLen {
		return false
	}
	for _, c := range v {
		if (c >= '0' && c <= '9') || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || c == '-' || c == '_' {
			continue
		}
		return false
	}
	return true
}

// abortError writes the same error payload the handlers use.
func abortError(c *gin.Context, status int, title, kind, msg string) {
	c.AbortWithStatusJSON(status, gin.H{
		"error":      title,
		"kind":       kind,
		"message":    msg,
		"request_id": RequestIDFrom(c),
	})
}
