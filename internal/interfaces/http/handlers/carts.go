// internal/interfaces/http/handlers/carts.go
package handlers

import (
	"context"

	goredis "github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/your-org/ainexus-marketplace/internal/config"
	"github.com/your-org/ainexus-marketplace/internal/domain/cart"
	"github.com/your-org/ainexus-marketplace/internal/infrastructure/database/redis"
)

// CartProvider builds a hydrated per-session cart store on demand. The store
// itself is request-scoped; Redis is the durable copy between requests, so
// two concurrent requests for the same session resolve last-write-wins.
type CartProvider struct {
	redisClient *goredis.Client
	config      *config.Config
	logger      *logrus.Logger
}

// NewCartProvider creates a new cart provider
func NewCartProvider(redisClient *goredis.Client, cfg *config.Config, logger *logrus.Logger) *CartProvider {
	return &CartProvider{
		redisClient: redisClient,
		config:      cfg,
		logger:      logger,
	}
}

// Store returns the session's cart store, hydrated from Redis
func (p *CartProvider) Store(ctx context.Context, sessionID string) (*cart.Store, cart.Storage) {
	storage := redis.NewCartStorage(p.redisClient, sessionID, p.config.Cart.SessionTTL)
	store := cart.NewStore(cart.NewPersister(storage, p.logger), p.logger)
	store.Hydrate(ctx)
	return store, storage
}

// Operations returns the session's cart operations facade
func (p *CartProvider) Operations(ctx context.Context, sessionID string) (*cart.Operations, *cart.Store) {
	store, storage := p.Store(ctx, sessionID)
	return cart.NewOperations(store, storage, p.logger), store
}
