package middleware

import (
	"net/http"
	"strings"

	"payflow/config"
	"payflow/internal/auth"

	"github.com/gin-gonic/gin"
)

// AuthRequired validates the Bearer JWT and sets the payer id in context.
func AuthRequired(cfg *config.JWTConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing authorization header"})
			return
		}
		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid authorization format"})
			return
		}
		claims, err := auth.ParseAccessToken(cfg, parts[1])
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
			return
		}
		c.Set("payer_id", claims.PayerID)
		c.Next()
	}
}

// GetPayerID returns the authenticated payer id (must be used after AuthRequired).
func GetPayerID(c *gin.Context) string {
	v, _ := c.Get("payer_id")
	if v == nil {
		return ""
	}
	return v.(string)
}
