package middleware

import (
	"log"
	"net/http"

	"main/utils"

	"github.com/gin-gonic/gin"
)

func EnhancedRecoveryMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				log.Printf("Warning: panic recovered on %s %s: %v",
					c.Request.Method, c.Request.URL.Path, err)
				utils.TrackError("http", "panic")
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
					"error": "Internal Server Error",
				})
			}
		}()
		c.Next()
	}
}
