package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"medtrack/internal/auth"
)

// Context keys set for downstream handlers.
const (
	UserIDKey = "uid"
	RoleKey   = "role"
)

// Auth verifies the Authorization: Bearer <jwt> header and exposes the
// caller's id and role on the gin context.
func Auth(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := strings.TrimPrefix(c.GetHeader("Authorization"), "Bearer ")
		if raw == "" || raw == c.GetHeader("Authorization") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "no token"})
			return
		}

		claims, err := auth.ParseToken(raw, secret)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "bad token"})
			return
		}

		c.Set(UserIDKey, claims.UserID)
		c.Set(RoleKey, claims.Role)
		c.Next()
	}
}
