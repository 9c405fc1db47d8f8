package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// RequireAdmin закрывает админские маршруты bearer-токеном.
// Пустой token означает режим разработки без проверки.
func RequireAdmin(token string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token == "" {
			c.Next()
			return
		}
		got := bearerToken(c.GetHeader("Authorization"))
		if got == "" {
			got = strings.TrimSpace(c.GetHeader("X-Admin-Token"))
		}
		if got == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing admin token"})
			return
		}
		if got != token {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "access denied"})
			return
		}
		c.Next()
	}
}

func bearerToken(header string) string {
	if header == "" {
		return ""
	}
	parts := strings.Fields(header)
	if len(parts) != 2 {
		return ""
	}
	if !strings.EqualFold(parts[0], "bearer") {
		return ""
	}
	return parts[1]
}
