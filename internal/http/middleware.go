package http

import (
	"github.com/gin-gonic/gin"
)

// SecurityHeadersMiddleware adds basic, sensible security headers.
func SecurityHeadersMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		// Prevents clickjacking
		c.Header("X-Frame-Options", "DENY")
		// Prevents MIME-type sniffing
		c.Header("X-Content-Type-Options", "nosniff")
		c.Next()
	}
}
