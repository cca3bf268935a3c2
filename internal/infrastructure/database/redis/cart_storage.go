// internal/infrastructure/database/redis/cart_storage.go
package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// CartStorage adapts Redis to the cart storage port for one session. Keys are
// namespaced per session id so two sessions never see each other's cart, and
// every write refreshes the session TTL.
type CartStorage struct {
	client    *redis.Client
	sessionID string
	ttl       time.Duration
}

// NewCartStorage creates session-scoped cart storage
func NewCartStorage(client *redis.Client, sessionID string, ttl time.Duration) *CartStorage {
	return &CartStorage{
		client:    client,
		sessionID: sessionID,
		ttl:       ttl,
	}
}

// Get reads a value, distinguishing "missing" from errors
func (s *CartStorage) Get(ctx context.Context, key string) (string, bool, error) {
	val, err := s.client.Get(ctx, s.key(key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read cart key %s: %w", key, err)
	}
	return val, true, nil
}

// Set writes a value and refreshes the session TTL
func (s *CartStorage) Set(ctx context.Context, key, value string) error {
	if err := s.client.Set(ctx, s.key(key), value, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to write cart key %s: %w", key, err)
	}
	return nil
}

// Remove deletes a value; deleting a missing key is not an error
func (s *CartStorage) Remove(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, s.key(key)).Err(); err != nil {
		return fmt.Errorf("failed to delete cart key %s: %w", key, err)
	}
	return nil
}

func (s *CartStorage) key(key string) string {
	return fmt.Sprintf("cart:session:%s:%s", s.sessionID, key)
}
