// internal/interfaces/http/handlers/cart.go
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/your-org/ainexus-marketplace/internal/config"
	"github.com/your-org/ainexus-marketplace/internal/domain/cart"
	"github.com/your-org/ainexus-marketplace/internal/interfaces/http/middleware"
)

// CartHandler handles cart endpoints
type CartHandler struct {
	carts  *CartProvider
	config *config.Config
	logger *logrus.Logger
}

// NewCartHandler creates a new cart handler
func NewCartHandler(carts *CartProvider, cfg *config.Config, logger *logrus.Logger) *CartHandler {
	return &CartHandler{
		carts:  carts,
		config: cfg,
		logger: logger,
	}
}

func (h *CartHandler) cartResponse(store *cart.Store) gin.H {
	state := store.State()
	return gin.H{
		"items":                state.Items,
		"is_open":              state.IsOpen,
		"last_updated":         state.LastUpdated,
		"version":              state.Version,
		"total_price":          store.TotalPrice(),
		"item_count":           store.ItemCount(),
		"contract_model_count": store.ContractModelCount(),
		"database_model_count": store.DatabaseModelCount(),
	}
}

// GetCart handles GET /cart
func (h *CartHandler) GetCart(c *gin.Context) {
	sessionID, _ := middleware.GetSessionIDFromContext(c)
	store, _ := h.carts.Store(c.Request.Context(), sessionID)

	// Optional filters narrow the item list without touching totals
	items := store.Items()
	if itemType := c.Query("type"); itemType != "" {
		items = store.ItemsByType(itemType)
	} else if seller := c.Query("seller"); seller != "" {
		items = store.ItemsBySeller(seller)
	} else if c.Query("min_price") != "" || c.Query("max_price") != "" {
		min, err := decimal.NewFromString(c.DefaultQuery("min_price", "0"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid min_price"})
			return
		}
		max, err := decimal.NewFromString(c.DefaultQuery("max_price", "1000000000"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid max_price"})
			return
		}
		items = store.ItemsByPriceRange(min, max)
	}

	response := h.cartResponse(store)
	response["items"] = items

	c.JSON(http.StatusOK, gin.H{
		"message": "Cart retrieved successfully",
		"data":    response,
	})
}

// AddItem handles POST /cart/items
func (h *CartHandler) AddItem(c *gin.Context) {
	sessionID, _ := middleware.GetSessionIDFromContext(c)

	var item cart.Item
	if err := c.ShouldBindJSON(&item); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}
	if item.ID == "" || item.Name == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Item id and name are required",
		})
		return
	}

	store, _ := h.carts.Store(c.Request.Context(), sessionID)
	alreadyPresent := store.IsInCart(item.ID)
	store.AddItem(c.Request.Context(), item)

	c.JSON(http.StatusOK, gin.H{
		"message": "Item added to cart successfully",
		"data":    h.cartResponse(store),
		"added":   !alreadyPresent,
	})
}

// AddItems handles POST /cart/items/batch
func (h *CartHandler) AddItems(c *gin.Context) {
	sessionID, _ := middleware.GetSessionIDFromContext(c)

	var req struct {
		Items []cart.Item `json:"items" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	ops, store := h.carts.Operations(c.Request.Context(), sessionID)
	inserted := ops.AddMultiple(c.Request.Context(), req.Items)

	c.JSON(http.StatusOK, gin.H{
		"message":  "Items added to cart",
		"data":     h.cartResponse(store),
		"inserted": inserted,
	})
}

// RemoveItem handles DELETE /cart/items/:id
func (h *CartHandler) RemoveItem(c *gin.Context) {
	sessionID, _ := middleware.GetSessionIDFromContext(c)
	itemID := c.Param("id")

	store, _ := h.carts.Store(c.Request.Context(), sessionID)
	store.RemoveItem(c.Request.Context(), itemID)

	c.JSON(http.StatusOK, gin.H{
		"message": "Item removed from cart",
		"data":    h.cartResponse(store),
	})
}

// RemoveItems handles DELETE /cart/items with a body of ids
func (h *CartHandler) RemoveItems(c *gin.Context) {
	sessionID, _ := middleware.GetSessionIDFromContext(c)

	var req struct {
		IDs []string `json:"ids" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	ops, store := h.carts.Operations(c.Request.Context(), sessionID)
	ops.RemoveMultiple(c.Request.Context(), req.IDs)

	c.JSON(http.StatusOK, gin.H{
		"message": "Items removed from cart",
		"data":    h.cartResponse(store),
	})
}

// ClearCart handles DELETE /cart
func (h *CartHandler) ClearCart(c *gin.Context) {
	sessionID, _ := middleware.GetSessionIDFromContext(c)

	store, _ := h.carts.Store(c.Request.Context(), sessionID)
	store.Clear(c.Request.Context())

	c.JSON(http.StatusOK, gin.H{
		"message": "Cart cleared",
		"data":    h.cartResponse(store),
	})
}

// UpdateItem handles PATCH /cart/items/:id
func (h *CartHandler) UpdateItem(c *gin.Context) {
	sessionID, _ := middleware.GetSessionIDFromContext(c)
	itemID := c.Param("id")

	var patch cart.ItemPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	store, _ := h.carts.Store(c.Request.Context(), sessionID)
	if !store.IsInCart(itemID) {
		c.JSON(http.StatusNotFound, gin.H{
			"error": "Item not in cart",
		})
		return
	}
	store.UpdateItem(c.Request.Context(), itemID, patch)

	c.JSON(http.StatusOK, gin.H{
		"message": "Cart item updated",
		"data":    h.cartResponse(store),
	})
}

// UpdateQuantity handles PUT /cart/items/:id/quantity
func (h *CartHandler) UpdateQuantity(c *gin.Context) {
	sessionID, _ := middleware.GetSessionIDFromContext(c)
	itemID := c.Param("id")

	var req struct {
		Quantity int `json:"quantity"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	store, _ := h.carts.Store(c.Request.Context(), sessionID)
	store.UpdateQuantity(c.Request.Context(), itemID, req.Quantity)

	c.JSON(http.StatusOK, gin.H{
		"message": "Cart quantity updated",
		"data":    h.cartResponse(store),
	})
}

// MoveToTop handles PUT /cart/items/:id/move-to-top
func (h *CartHandler) MoveToTop(c *gin.Context) {
	sessionID, _ := middleware.GetSessionIDFromContext(c)
	itemID := c.Param("id")

	store, _ := h.carts.Store(c.Request.Context(), sessionID)
	store.MoveToTop(c.Request.Context(), itemID)

	c.JSON(http.StatusOK, gin.H{
		"message": "Item moved to top",
		"data":    h.cartResponse(store),
	})
}

// SetCartOpen handles PUT /cart/open
func (h *CartHandler) SetCartOpen(c *gin.Context) {
	sessionID, _ := middleware.GetSessionIDFromContext(c)

	var req struct {
		Open *bool `json:"open" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	store, _ := h.carts.Store(c.Request.Context(), sessionID)
	store.SetOpen(c.Request.Context(), *req.Open)

	c.JSON(http.StatusOK, gin.H{
		"message": "Cart visibility updated",
		"data":    h.cartResponse(store),
	})
}

// SortCart handles PUT /cart/sort
func (h *CartHandler) SortCart(c *gin.Context) {
	sessionID, _ := middleware.GetSessionIDFromContext(c)

	var req struct {
		Criteria string `json:"criteria" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	criteria := cart.SortCriteria(req.Criteria)
	if !criteria.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Unknown sort criteria",
		})
		return
	}

	store, _ := h.carts.Store(c.Request.Context(), sessionID)
	store.SortBy(c.Request.Context(), criteria)

	c.JSON(http.StatusOK, gin.H{
		"message": "Cart sorted",
		"data":    h.cartResponse(store),
	})
}

// ExportCart handles GET /cart/export
func (h *CartHandler) ExportCart(c *gin.Context) {
	sessionID, _ := middleware.GetSessionIDFromContext(c)

	ops, _ := h.carts.Operations(c.Request.Context(), sessionID)
	var (
		doc string
		err error
	)
	if c.Query("metadata") == "true" {
		doc, err = ops.ExportWithMetadata()
	} else {
		doc, err = ops.Export()
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to export cart",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Cart exported",
		"data":    gin.H{"export": doc},
	})
}

// ImportCart handles POST /cart/import
func (h *CartHandler) ImportCart(c *gin.Context) {
	sessionID, _ := middleware.GetSessionIDFromContext(c)

	var req struct {
		Data string `json:"data" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	ops, store := h.carts.Operations(c.Request.Context(), sessionID)
	if !ops.ImportWithValidation(c.Request.Context(), req.Data) {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Malformed cart export document",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Cart imported",
		"data":    h.cartResponse(store),
	})
}

// BackupCart handles POST /cart/backup
func (h *CartHandler) BackupCart(c *gin.Context) {
	sessionID, _ := middleware.GetSessionIDFromContext(c)

	ops, _ := h.carts.Operations(c.Request.Context(), sessionID)
	if err := ops.Backup(c.Request.Context()); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to back up cart",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Cart backed up",
	})
}

// RestoreCart handles POST /cart/restore
func (h *CartHandler) RestoreCart(c *gin.Context) {
	sessionID, _ := middleware.GetSessionIDFromContext(c)

	ops, store := h.carts.Operations(c.Request.Context(), sessionID)
	if !ops.RestoreBackup(c.Request.Context()) {
		c.JSON(http.StatusNotFound, gin.H{
			"error": "No cart backup available",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Cart restored from backup",
		"data":    h.cartResponse(store),
	})
}
