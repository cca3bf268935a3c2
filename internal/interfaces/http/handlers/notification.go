// internal/interfaces/http/handlers/notification.go
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/your-org/ainexus-marketplace/internal/domain/notification"
	"github.com/your-org/ainexus-marketplace/internal/interfaces/http/middleware"
)

// NotificationHandler handles notification endpoints
type NotificationHandler struct {
	registry *notification.Registry
}

// NewNotificationHandler creates a new notification handler
func NewNotificationHandler(registry *notification.Registry) *NotificationHandler {
	return &NotificationHandler{registry: registry}
}

// GetNotifications handles GET /notifications
func (h *NotificationHandler) GetNotifications(c *gin.Context) {
	sessionID, _ := middleware.GetSessionIDFromContext(c)
	queue := h.registry.Queue(sessionID)

	c.JSON(http.StatusOK, gin.H{
		"data": gin.H{
			"notifications": queue.List(),
		},
	})
}

// DismissNotification handles DELETE /notifications/:id
func (h *NotificationHandler) DismissNotification(c *gin.Context) {
	sessionID, _ := middleware.GetSessionIDFromContext(c)
	queue := h.registry.Queue(sessionID)

	if !queue.Dismiss(c.Param("id")) {
		c.JSON(http.StatusNotFound, gin.H{
			"error": "Notification not found",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Notification dismissed",
	})
}
