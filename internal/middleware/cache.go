package middleware

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
)

// PublicCache marks responses as cacheable by browsers and proxies.
// Immutable is for content addressed by a key that is never reused.
func PublicCache(maxAge time.Duration, immutable bool) gin.HandlerFunc {
	value := fmt.Sprintf("public, max-age=%d", int(maxAge.Seconds()))
	if immutable {
		value += ", immutable"
	}
	return func(c *gin.Context) {
		c.Header("Cache-Control", value)
		c.Next()
	}
}

// NoStore keeps per-user responses, answer keys and signed downloads out
// of shared caches.
func NoStore() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Cache-Control", "private, no-store")
		c.Header("Pragma", "no-cache")
		c.Next()
	}
}
