package middleware

import (
	"net/http"
	"strings"

	"telegram_docbot/internal/logger"

	"github.com/gin-gonic/gin"
)

// TokenParser validates a bearer token and returns the telegram id in its subject
type TokenParser interface {
	Parse(token string) (int64, error)
}

// AdminAuth accepts only bearer tokens whose subject is the admin.
// The telegram id is stored under "user_id".
func AdminAuth(tokens TokenParser, isAdmin func(int64) bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authorization header required"})
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid authorization header format"})
			return
		}

		tgID, err := tokens.Parse(parts[1])
		if err != nil {
			logger.Debug("admin token rejected", "error", err, "ip", c.ClientIP())
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
			return
		}
		if !isAdmin(tgID) {
			logger.Warn("non-admin token on admin api", "tg_id", tgID, "ip", c.ClientIP())
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "admin only"})
			return
		}

		c.Set("user_id", tgID)
		c.Next()
	}
}
