// internal/interfaces/http/handlers/session.go
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/your-org/ainexus-marketplace/internal/config"
	"github.com/your-org/ainexus-marketplace/internal/domain/notification"
	"github.com/your-org/ainexus-marketplace/internal/interfaces/http/middleware"
	"github.com/your-org/ainexus-marketplace/internal/pkg/auth"
)

// SessionHandler handles wallet session endpoints
type SessionHandler struct {
	jwtManager *auth.JWTManager
	carts      *CartProvider
	registry   *notification.Registry
	config     *config.Config
	logger     *logrus.Logger
}

// NewSessionHandler creates a new session handler
func NewSessionHandler(cfg *config.Config, carts *CartProvider, registry *notification.Registry, logger *logrus.Logger) *SessionHandler {
	return &SessionHandler{
		jwtManager: auth.NewJWTManager(cfg),
		carts:      carts,
		registry:   registry,
		config:     cfg,
		logger:     logger,
	}
}

// CreateSessionRequest is the session creation payload. Wallet is optional:
// carts work before a wallet is connected.
type CreateSessionRequest struct {
	Wallet string `json:"wallet"`
}

// CreateSession handles POST /session
func (h *SessionHandler) CreateSession(c *gin.Context) {
	var req CreateSessionRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":   "Invalid request data",
				"details": err.Error(),
			})
			return
		}
	}

	token, sessionID, err := h.jwtManager.GenerateSessionToken(req.Wallet)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to create session",
		})
		return
	}

	// A connected wallet gets a chain activity poller for its session
	if req.Wallet != "" {
		h.registry.StartPoller(sessionID, req.Wallet)
	}

	h.logger.WithFields(logrus.Fields{
		"session": sessionID,
		"wallet":  req.Wallet,
	}).Info("Session created")

	c.JSON(http.StatusCreated, gin.H{
		"message": "Session created successfully",
		"data": gin.H{
			"token":      token,
			"session_id": sessionID,
			"wallet":     req.Wallet,
			"expires_in": int(h.config.JWT.SessionExpiry.Seconds()),
		},
	})
}

// GetSession handles GET /session
func (h *SessionHandler) GetSession(c *gin.Context) {
	wallet, _ := middleware.GetWalletFromContext(c)
	sessionID, _ := middleware.GetSessionIDFromContext(c)

	c.JSON(http.StatusOK, gin.H{
		"data": gin.H{
			"session_id":       sessionID,
			"wallet":           wallet,
			"wallet_connected": wallet != "",
		},
	})
}

// EndSession handles DELETE /session. The cart is stashed under the session
// key first so a returning client can pick it up.
func (h *SessionHandler) EndSession(c *gin.Context) {
	sessionID, _ := middleware.GetSessionIDFromContext(c)

	ops, _ := h.carts.Operations(c.Request.Context(), sessionID)
	if err := ops.SaveSession(c.Request.Context()); err != nil {
		h.logger.WithError(err).WithField("session", sessionID).Warn("Failed to save cart on session end")
	}
	h.registry.Drop(sessionID)

	c.JSON(http.StatusOK, gin.H{
		"message": "Session ended",
	})
}
