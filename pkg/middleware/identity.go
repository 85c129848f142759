package middleware

import (
	"github.com/gin-gonic/gin"
)

const userIDHeader = "X-User-ID"

const userIDKey = "user_id"

// Identity extracts the verified caller id that the edge proxy injects.
// Endpoints decide individually whether an anonymous caller is acceptable.
func Identity() gin.HandlerFunc {
	return func(c *gin.Context) {
		if id := c.GetHeader(userIDHeader); id != "" {
			c.Set(userIDKey, id)
		}
		c.Next()
	}
}

// UserID returns the caller id, or "" when the request is anonymous.
func UserID(c *gin.Context) string {
	return c.GetString(userIDKey)
}
