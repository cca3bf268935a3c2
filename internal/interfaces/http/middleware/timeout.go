package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/your-org/ainexus-marketplace/internal/config"
)

// Timeout bounds every request by the configured server request timeout.
// Chain gateway calls carry their own shorter timeout, so a hung gateway
// cannot pin a handler past this deadline.
func Timeout(cfg *config.Config) gin.HandlerFunc {
	limit := cfg.Server.RequestTimeout
	if limit <= 0 {
		limit = 30 * time.Second
	}

	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), limit)
		defer cancel()

		c.Request = c.Request.WithContext(ctx)

		finished := make(chan struct{})
		go func() {
			defer close(finished)
			c.Next()
		}()

		select {
		case <-finished:
		case <-ctx.Done():
			c.JSON(http.StatusRequestTimeout, gin.H{
				"error": "Request timed out",
			})
			c.Abort()
		}
	}
}
