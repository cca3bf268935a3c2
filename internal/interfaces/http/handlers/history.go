// internal/interfaces/http/handlers/history.go
package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/your-org/ainexus-marketplace/internal/domain/purchase"
	"github.com/your-org/ainexus-marketplace/internal/domain/purchaselog"
	"github.com/your-org/ainexus-marketplace/internal/interfaces/http/middleware"
)

// HistoryHandler handles purchase log endpoints
type HistoryHandler struct {
	log    *purchaselog.Service
	logger *logrus.Logger
}

// NewHistoryHandler creates a new history handler
func NewHistoryHandler(log *purchaselog.Service, logger *logrus.Logger) *HistoryHandler {
	return &HistoryHandler{
		log:    log,
		logger: logger,
	}
}

// parseDateFilter accepts RFC3339 timestamps or bare dates. An empty value
// means the bound is open.
func parseDateFilter(raw string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", raw)
}

// GetHistory handles GET /purchases
func (h *HistoryHandler) GetHistory(c *gin.Context) {
	wallet, _ := middleware.GetWalletFromContext(c)

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	startDate, err := parseDateFilter(c.Query("start_date"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid start_date"})
		return
	}
	endDate, err := parseDateFilter(c.Query("end_date"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid end_date"})
		return
	}

	result, err := h.log.History(c.Request.Context(), purchaselog.HistoryQuery{
		WalletAddress:   wallet,
		SellerAddress:   c.Query("seller"),
		TransactionType: c.Query("type"),
		Status:          c.Query("status"),
		Network:         c.Query("network"),
		StartDate:       startDate,
		EndDate:         endDate,
		Page:            page,
		Limit:           limit,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to retrieve purchase history",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Purchase history retrieved",
		"data":    result,
	})
}

// GetByTxHash handles GET /purchases/:txHash
func (h *HistoryHandler) GetByTxHash(c *gin.Context) {
	record, err := h.log.GetByTxHash(c.Request.Context(), c.Param("txHash"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"error": "Purchase record not found",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": record,
	})
}

// RecordTokenPurchaseRequest is the direct purchase-log write payload, used
// when a transaction was submitted outside this service but should still
// appear in history.
type RecordTokenPurchaseRequest struct {
	ModelID              string `json:"model_id" binding:"required"`
	ContractModelID      *int64 `json:"contract_model_id"`
	ModelName            string `json:"model_name" binding:"required"`
	SellerAddress        string `json:"seller_address"`
	TxHash               string `json:"tx_hash" binding:"required"`
	PriceTokens          string `json:"price_tokens" binding:"required"`
	Network              string `json:"network"`
	TransactionType      string `json:"transaction_type"`
	Status               string `json:"status"`
	TokenContractAddress string `json:"token_contract_address"`
	TokenSymbol          string `json:"token_symbol"`
	TokenDecimals        int    `json:"token_decimals"`
}

// RecordTokenPurchase handles POST /purchases/token
func (h *HistoryHandler) RecordTokenPurchase(c *gin.Context) {
	wallet, _ := middleware.GetWalletFromContext(c)

	var req RecordTokenPurchaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	price, err := decimal.NewFromString(req.PriceTokens)
	if err != nil || price.IsNegative() {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid token price",
		})
		return
	}

	entry := purchase.Entry{
		ModelID:              req.ModelID,
		ContractModelID:      req.ContractModelID,
		ModelName:            req.ModelName,
		WalletAddress:        wallet,
		SellerAddress:        req.SellerAddress,
		TxHash:               req.TxHash,
		PriceTokens:          price,
		Network:              req.Network,
		TransactionType:      req.TransactionType,
		Status:               req.Status,
		TokenContractAddress: req.TokenContractAddress,
		TokenSymbol:          req.TokenSymbol,
		TokenDecimals:        req.TokenDecimals,
	}
	if entry.TransactionType == "" {
		entry.TransactionType = "token_purchase"
	}

	if err := h.log.Record(c.Request.Context(), entry); err != nil {
		h.logger.WithError(err).WithField("tx", req.TxHash).Error("Failed to record token purchase")
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to record purchase",
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Purchase recorded",
	})
}
