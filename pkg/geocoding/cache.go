package geocoding

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"iisa-recruitment-backend/internal/domain"

	"github.com/redis/go-redis/v9"
)

// Cache stores lookups by normalized address. A cached nil means "known to
// have no coordinates" and is a hit.
type Cache interface {
	Get(ctx context.Context, key string) (*domain.LatLng, bool, error)
	Set(ctx context.Context, key string, pos *domain.LatLng) error
}

type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string]*domain.LatLng
}

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{entries: make(map[string]*domain.LatLng)}
}

func (c *MemoryCache) Get(_ context.Context, key string) (*domain.LatLng, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	pos, ok := c.entries[key]
	return pos, ok, nil
}

func (c *MemoryCache) Set(_ context.Context, key string, pos *domain.LatLng) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = pos
	return nil
}

const redisKeyPrefix = "geocode:"

// RedisCache shares lookups between instances. Entries expire after ttl.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisCache(client *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{client: client, ttl: ttl}
}

func (c *RedisCache) Get(ctx context.Context, key string) (*domain.LatLng, bool, error) {
	raw, err := c.client.Get(ctx, redisKeyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("geocode cache get: %w", err)
	}
	var pos *domain.LatLng
	if err := json.Unmarshal(raw, &pos); err != nil {
		return nil, false, fmt.Errorf("geocode cache decode: %w", err)
	}
	return pos, true, nil
}

func (c *RedisCache) Set(ctx context.Context, key string, pos *domain.LatLng) error {
	raw, err := json.Marshal(pos)
	if err != nil {
		return err
	}
	if err := c.client.Set(ctx, redisKeyPrefix+key, raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("geocode cache set: %w", err)
	}
	return nil
}
