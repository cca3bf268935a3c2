// internal/interfaces/http/routes/routes.go
package routes

import (
	"github.com/gin-gonic/gin"
	goredis "github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/your-org/ainexus-marketplace/internal/config"
	"github.com/your-org/ainexus-marketplace/internal/domain/notification"
	"github.com/your-org/ainexus-marketplace/internal/domain/purchase"
	"github.com/your-org/ainexus-marketplace/internal/domain/purchaselog"
	"github.com/your-org/ainexus-marketplace/internal/interfaces/http/handlers"
	"github.com/your-org/ainexus-marketplace/internal/interfaces/http/middleware"
	"gorm.io/gorm"
)

// Deps carries the shared dependencies the route tree wires together
type Deps struct {
	DB          *gorm.DB
	RedisClient *goredis.Client
	Config      *config.Config
	Logger      *logrus.Logger
	Registry    *notification.Registry
	Token       purchase.TokenContract
	Market      purchase.Marketplace
}

// SetupRoutes wires every API route group
func SetupRoutes(rg *gin.RouterGroup, deps Deps) {
	carts := handlers.NewCartProvider(deps.RedisClient, deps.Config, deps.Logger)
	logService := purchaselog.NewService(deps.DB, deps.Logger)

	sessionHandler := handlers.NewSessionHandler(deps.Config, carts, deps.Registry, deps.Logger)
	cartHandler := handlers.NewCartHandler(carts, deps.Config, deps.Logger)
	insightsHandler := handlers.NewInsightsHandler(carts)
	purchaseHandler := handlers.NewPurchaseHandler(carts, deps.Token, deps.Market, logService, deps.Registry, deps.Config, deps.Logger)
	historyHandler := handlers.NewHistoryHandler(logService, deps.Logger)
	notificationHandler := handlers.NewNotificationHandler(deps.Registry)

	// Session bootstrap is the only unauthenticated endpoint
	rg.POST("/session", sessionHandler.CreateSession)

	protected := rg.Group("")
	protected.Use(middleware.SessionMiddleware(deps.Config))
	{
		protected.GET("/session", sessionHandler.GetSession)
		protected.DELETE("/session", sessionHandler.EndSession)

		cart := protected.Group("/cart")
		{
			cart.GET("", cartHandler.GetCart)
			cart.DELETE("", cartHandler.ClearCart)
			cart.POST("/items", cartHandler.AddItem)
			cart.POST("/items/batch", cartHandler.AddItems)
			cart.DELETE("/items", cartHandler.RemoveItems)
			cart.DELETE("/items/:id", cartHandler.RemoveItem)
			cart.PATCH("/items/:id", cartHandler.UpdateItem)
			cart.PUT("/items/:id/quantity", cartHandler.UpdateQuantity)
			cart.PUT("/items/:id/move-to-top", cartHandler.MoveToTop)
			cart.PUT("/open", cartHandler.SetCartOpen)
			cart.PUT("/sort", cartHandler.SortCart)
			cart.GET("/export", cartHandler.ExportCart)
			cart.POST("/import", cartHandler.ImportCart)
			cart.POST("/backup", cartHandler.BackupCart)
			cart.POST("/restore", cartHandler.RestoreCart)
			cart.GET("/insights", insightsHandler.GetInsights)
		}

		// Purchases need a connected wallet on top of a session
		buy := protected.Group("/purchase")
		buy.Use(middleware.WalletRequiredMiddleware())
		{
			buy.POST("/all", purchaseHandler.PurchaseAll)
			buy.POST("/approve", purchaseHandler.ApproveSpending)
			buy.POST("/:id", purchaseHandler.PurchaseItem)
		}

		purchases := protected.Group("/purchases")
		purchases.Use(middleware.WalletRequiredMiddleware())
		{
			purchases.GET("", historyHandler.GetHistory)
			purchases.POST("/token", historyHandler.RecordTokenPurchase)
			purchases.GET("/:txHash", historyHandler.GetByTxHash)
		}

		notifications := protected.Group("/notifications")
		{
			notifications.GET("", notificationHandler.GetNotifications)
			notifications.DELETE("/:id", notificationHandler.DismissNotification)
		}
	}
}
