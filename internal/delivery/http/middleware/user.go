package middleware

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

const (
	// UserIDHeader carries the caller identity set by the gateway.
	UserIDHeader = "X-User-ID"
	// UserIDKey is the gin context key holding the caller's profile id.
	UserIDKey = "user_id"
)

// RequireUser rejects requests without a positive numeric X-User-ID header
// and stores the id in the context under UserIDKey.
func RequireUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := c.GetHeader(UserIDHeader)
		if raw == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing " + UserIDHeader + " header"})
			return
		}

		userID, err := strconv.Atoi(raw)
		if err != nil || userID <= 0 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid " + UserIDHeader + " header"})
			return
		}

		c.Set(UserIDKey, userID)
		c.Next()
	}
}
