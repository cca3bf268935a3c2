// internal/interfaces/http/middleware/auth.go
package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/your-org/ainexus-marketplace/internal/config"
	"github.com/your-org/ainexus-marketplace/internal/pkg/auth"
)

// SessionMiddleware creates wallet-session authentication middleware. Every
// cart operation needs a session token so carts stay isolated per session;
// the wallet address inside may be empty until the user connects one.
func SessionMiddleware(cfg *config.Config) gin.HandlerFunc {
	jwtManager := auth.NewJWTManager(cfg)

	return func(c *gin.Context) {
		// Get Authorization header
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "Authorization header required",
			})
			c.Abort()
			return
		}

		// Extract token from header
		tokenString := auth.ExtractTokenFromHeader(authHeader)
		if tokenString == "" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "Invalid authorization header format",
			})
			c.Abort()
			return
		}

		// Validate session token
		claims, err := jwtManager.ValidateToken(tokenString)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "Invalid or expired session",
			})
			c.Abort()
			return
		}

		// Store session information in context
		c.Set("wallet", claims.Wallet)
		c.Set("session_id", claims.SessionID)
		c.Set("token_claims", claims)

		c.Next()
	}
}

// WalletRequiredMiddleware rejects sessions that have no wallet connected.
// Purchase and approval endpoints sit behind this.
func WalletRequiredMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		wallet, exists := c.Get("wallet")
		if !exists || wallet.(string) == "" {
			c.JSON(http.StatusForbidden, gin.H{
				"error": "Wallet connection required",
			})
			c.Abort()
			return
		}

		c.Next()
	}
}

// GetWalletFromContext extracts the wallet address from gin context
func GetWalletFromContext(c *gin.Context) (string, bool) {
	wallet, exists := c.Get("wallet")
	if !exists {
		return "", false
	}
	return wallet.(string), true
}

// GetSessionIDFromContext extracts the session id from gin context
func GetSessionIDFromContext(c *gin.Context) (string, bool) {
	sessionID, exists := c.Get("session_id")
	if !exists {
		return "", false
	}
	return sessionID.(string), true
}
