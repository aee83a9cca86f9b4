package middleware

import (
	"net/http"

	"authservice/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

// TokenCookie is the name of the session cookie.
const TokenCookie = "token"

// ClearTokenCookie expires the session cookie so the client stops
// resubmitting a dead token.
func ClearTokenCookie(c *gin.Context, secure bool) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(TokenCookie, "", -1, "/", "", secure, true)
}

// AuthMiddleware creates a Gin middleware that authenticates requests via
// the session cookie. The protected route reads the cookie only, never the
// Authorization header.
func AuthMiddleware(secret []byte, secureCookies bool, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, err := c.Cookie(TokenCookie)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized: token not found"})
			c.Abort()
			return
		}

		claims := &models.Claims{}
		token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
			// Ensure the token's signing method is what we expect
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return secret, nil
		})

		if err != nil || !token.Valid {
			logger.Warn("Rejected session token", zap.Error(err))
			ClearTokenCookie(c, secureCookies)
			c.JSON(http.StatusUnauthorized, gin.H{"message": "Invalid or expired token"})
			c.Abort()
			return
		}

		// Set user claims in context
		c.Set("username", claims.Username)
		c.Set("user_id", claims.UserID)

		c.Next()
	}
}
