// internal/interfaces/http/handlers/insights.go
package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/your-org/ainexus-marketplace/internal/domain/insights"
	"github.com/your-org/ainexus-marketplace/internal/interfaces/http/middleware"
)

// InsightsHandler handles cart analytics endpoints
type InsightsHandler struct {
	carts *CartProvider
}

// NewInsightsHandler creates a new insights handler
func NewInsightsHandler(carts *CartProvider) *InsightsHandler {
	return &InsightsHandler{carts: carts}
}

// GetInsights handles GET /cart/insights
func (h *InsightsHandler) GetInsights(c *gin.Context) {
	sessionID, _ := middleware.GetSessionIDFromContext(c)
	store, _ := h.carts.Store(c.Request.Context(), sessionID)

	result := insights.Analyze(store.Items(), time.Now().UTC())

	c.JSON(http.StatusOK, gin.H{
		"message": "Cart insights computed",
		"data":    result,
	})
}
