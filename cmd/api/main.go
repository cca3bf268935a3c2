// cmd/api/main.go
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/your-org/ainexus-marketplace/internal/config"
	"github.com/your-org/ainexus-marketplace/internal/domain/notification"
	"github.com/your-org/ainexus-marketplace/internal/domain/purchaselog"
	"github.com/your-org/ainexus-marketplace/internal/infrastructure/blockchain"
	"github.com/your-org/ainexus-marketplace/internal/infrastructure/database/postgres"
	"github.com/your-org/ainexus-marketplace/internal/infrastructure/database/redis"
	"github.com/your-org/ainexus-marketplace/internal/interfaces/http"
	"github.com/your-org/ainexus-marketplace/internal/pkg/logger"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	log.Printf("🚀 Starting %s v%s in %s mode", cfg.App.Name, cfg.App.Version, cfg.App.Environment)

	appLogger := logger.New(cfg.Logging)

	// Connect to database
	db, err := postgres.NewConnection(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// Connect to Redis
	redisClient, err := redis.NewConnection(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer redisClient.Close()

	// Health check
	if err := db.Health(); err != nil {
		log.Fatalf("Database health check failed: %v", err)
	}

	if err := redisClient.Health(); err != nil {
		log.Fatalf("Redis health check failed: %v", err)
	}

	// Run database migrations
	migration := postgres.NewMigration(db.GetDB())

	if err := migration.RunAutoMigrations(); err != nil {
		log.Fatalf("Database migration failed: %v", err)
	}

	if err := migration.CreateIndexes(); err != nil {
		log.Printf("Warning: Index creation failed: %v", err)
	}

	if cfg.IsDevelopment() {
		migration.GetTableInfo()
	}

	// Chain gateway client
	chainClient := blockchain.NewClient(cfg.Chain, appLogger)
	{
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		if err := chainClient.Health(ctx); err != nil {
			log.Printf("Warning: Chain gateway health check failed: %v", err)
		}
		cancel()
	}

	// The poller reads aggregate activity from the chain gateway, or from the
	// local purchase log when the gateway exposes no stats endpoint
	var statsSource notification.StatsSource = chainClient
	if cfg.Notifications.StatsSource == "local" {
		statsSource = purchaselog.NewService(db.GetDB(), appLogger)
	}

	// Per-session notification registry
	registry := notification.NewRegistry(
		statsSource,
		cfg.Chain.TokenSymbol,
		cfg.Notifications.MaxVisible,
		cfg.Notifications.DisplayTTL,
		cfg.Notifications.PollInterval,
		cfg.Notifications.AmountEps,
		appLogger,
	)
	defer registry.Close()

	log.Println("✅ All systems operational!")

	// Create and start HTTP server
	server := http.NewServer(cfg, db.GetDB(), redisClient.GetClient(), chainClient, registry, appLogger)

	// Start server in a goroutine
	go func() {
		if err := server.Start(); err != nil {
			log.Fatalf("Failed to start HTTP server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Println("👋 Shutting down gracefully...")

	// Give server 30 seconds to shutdown gracefully
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Stop(ctx); err != nil {
		log.Printf("Failed to shutdown HTTP server gracefully: %v", err)
	}

	log.Println("✅ Server shutdown completed")
}
