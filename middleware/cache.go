package middleware

import "github.com/gin-gonic/gin"

// NoStoreMiddleware forbids caching of responses. Session and second-factor
// payloads must never land in shared caches.
func NoStoreMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Cache-Control", "no-store")
		c.Header("Pragma", "no-cache")
		c.Next()
	}
}
