// internal/interfaces/http/handlers/purchase.go
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/your-org/ainexus-marketplace/internal/config"
	"github.com/your-org/ainexus-marketplace/internal/domain/notification"
	"github.com/your-org/ainexus-marketplace/internal/domain/purchase"
	"github.com/your-org/ainexus-marketplace/internal/interfaces/http/middleware"
)

// PurchaseHandler handles token purchase endpoints
type PurchaseHandler struct {
	carts    *CartProvider
	token    purchase.TokenContract
	market   purchase.Marketplace
	recorder purchase.Recorder
	registry *notification.Registry
	config   *config.Config
	logger   *logrus.Logger
}

// NewPurchaseHandler creates a new purchase handler
func NewPurchaseHandler(carts *CartProvider, token purchase.TokenContract, market purchase.Marketplace, recorder purchase.Recorder, registry *notification.Registry, cfg *config.Config, logger *logrus.Logger) *PurchaseHandler {
	return &PurchaseHandler{
		carts:    carts,
		token:    token,
		market:   market,
		recorder: recorder,
		registry: registry,
		config:   cfg,
		logger:   logger,
	}
}

// service builds the orchestrator around the session's hydrated cart store
func (h *PurchaseHandler) service(c *gin.Context) (*purchase.Service, string) {
	sessionID, _ := middleware.GetSessionIDFromContext(c)
	wallet, _ := middleware.GetWalletFromContext(c)

	store, _ := h.carts.Store(c.Request.Context(), sessionID)
	svc := purchase.NewService(store, h.token, h.market, h.recorder, h.registry.Queue(sessionID), purchase.Options{
		MarketplaceAddress:   h.config.Chain.MarketplaceAddress,
		TokenContractAddress: h.config.Chain.TokenContractAddress,
		TokenSymbol:          h.config.Chain.TokenSymbol,
		TokenDecimals:        h.config.Chain.TokenDecimals,
		Network:              h.config.Chain.Network,
		TokensPerBase:        h.config.Chain.TokensPerBase,
		ApprovalThreshold:    h.config.Chain.ApprovalThreshold,
	}, h.logger)
	return svc, wallet
}

func receiptJSON(r purchase.Receipt) gin.H {
	out := gin.H{
		"item":   r.Item,
		"status": r.Status,
		"tokens": r.Tokens,
	}
	if r.TxHash != "" {
		out["tx_hash"] = r.TxHash
	}
	if r.LogWarning != "" {
		out["warning"] = r.LogWarning
	}
	if detail := r.FailureDetail(); detail != nil {
		out["failure"] = detail
	}
	return out
}

// PurchaseItem handles POST /purchase/:id
func (h *PurchaseHandler) PurchaseItem(c *gin.Context) {
	svc, wallet := h.service(c)

	receipt := svc.PurchaseItem(c.Request.Context(), wallet, c.Param("id"))
	status := http.StatusOK
	if receipt.Status != purchase.StatusSettled {
		status = http.StatusUnprocessableEntity
	}

	c.JSON(status, gin.H{
		"message": purchaseMessage(receipt.Status),
		"data":    receiptJSON(receipt),
	})
}

// PurchaseAll handles POST /purchase/all
func (h *PurchaseHandler) PurchaseAll(c *gin.Context) {
	svc, wallet := h.service(c)

	bulk := svc.PurchaseAll(c.Request.Context(), wallet)
	receipts := make([]gin.H, 0, len(bulk.Receipts))
	for _, r := range bulk.Receipts {
		receipts = append(receipts, receiptJSON(r))
	}

	// Partial success is still a 200: the response body carries the split
	status := http.StatusOK
	if bulk.Succeeded == 0 && bulk.Failed > 0 {
		status = http.StatusUnprocessableEntity
	}

	c.JSON(status, gin.H{
		"message": "Bulk purchase completed",
		"data": gin.H{
			"succeeded": bulk.Succeeded,
			"failed":    bulk.Failed,
			"receipts":  receipts,
		},
	})
}

// ApproveSpending handles POST /purchase/approve
func (h *PurchaseHandler) ApproveSpending(c *gin.Context) {
	svc, wallet := h.service(c)

	var req struct {
		Amount string `json:"amount"`
	}
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":   "Invalid request data",
				"details": err.Error(),
			})
			return
		}
	}

	amount := decimal.Zero
	if req.Amount != "" {
		parsed, err := decimal.NewFromString(req.Amount)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "Invalid approval amount",
			})
			return
		}
		amount = parsed
	}

	tx, err := svc.ApproveSpending(c.Request.Context(), wallet, amount)
	if err != nil {
		var fail *purchase.Failure
		if errors.As(err, &fail) {
			c.JSON(http.StatusUnprocessableEntity, gin.H{
				"error": fail.Message,
				"kind":  string(fail.Kind),
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Approval failed",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Approval transaction submitted",
		"data":    gin.H{"tx_hash": tx.Hash},
	})
}

func purchaseMessage(status purchase.Status) string {
	switch status {
	case purchase.StatusSettled:
		return "Purchase completed successfully"
	case purchase.StatusAwaitingApproval:
		return "Marketplace spending approval required"
	default:
		return "Purchase failed"
	}
}
