package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"taskcompass/internal/auth"
)

// UserIDKey is the gin context key under which the authenticated uid is stored.
const UserIDKey = "user_id"

// JWTAuthMiddleware rejects requests without a valid Bearer token and places
// the authenticated uid into the request context.
func JWTAuthMiddleware(jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" || !strings.HasPrefix(header, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header missing or malformed"})
			return
		}

		userID, err := auth.ParseToken(strings.TrimPrefix(header, "Bearer "), jwtSecret)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			return
		}

		c.Set(UserIDKey, userID)
		c.Next()
	}
}
