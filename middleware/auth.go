package middleware

import (
	"fmt"
	"strings"
	"time"

	"main/config"
	"main/model"
	"main/utils"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// AuthMiddleware verifies the identity token issued by the external identity
// provider and stores the caller's user id and role in the context. Session
// and second-factor checks happen in later middleware; this one only
// establishes who is asking.
func AuthMiddleware(cfg config.AuthConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			utils.Unauthorized(c, "Missing or invalid token")
			c.Abort()
			return
		}

		tokenString := strings.TrimPrefix(authHeader, "Bearer ")

		token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return []byte(cfg.JWTSecret), nil
		})
		if err != nil {
			utils.Unauthorized(c, "Invalid token")
			c.Abort()
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok || claims["user_id"] == nil || claims["exp"] == nil {
			utils.Unauthorized(c, "Invalid token claims")
			c.Abort()
			return
		}

		if exp, ok := claims["exp"].(float64); ok {
			if time.Now().Unix() > int64(exp) {
				utils.Unauthorized(c, "Token has expired")
				c.Abort()
				return
			}
		}

		if iss, ok := claims["iss"].(string); ok && cfg.Issuer != "" && iss != cfg.Issuer {
			utils.Unauthorized(c, "Invalid token issuer")
			c.Abort()
			return
		}

		userID, ok := claims["user_id"].(string)
		if !ok || userID == "" {
			utils.Unauthorized(c, "Invalid user ID in token")
			c.Abort()
			return
		}

		roleClaim, _ := claims["role"].(string)
		role, err := model.ParseRole(roleClaim)
		if err != nil {
			utils.Unauthorized(c, "Invalid role in token")
			c.Abort()
			return
		}

		c.Set("user_id", userID)
		c.Set("user_role", string(role))
		if email, ok := claims["email"].(string); ok {
			c.Set("user_email", email)
		}

		c.Next()
	}
}
