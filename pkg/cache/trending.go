package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/uchat-app/uchat/internal/domain"
)

const trendingKey = "cache:posts:trending"

// TrendingCache keeps the rendered trending feed in Redis so the hot path
// does not hit Postgres on every request. Entries expire on their own; a
// stale feed is acceptable for the TTL window.
type TrendingCache struct {
	redis *redis.Client
	ttl   time.Duration
}

// NewTrendingCache creates a trending feed cache with the given TTL.
func NewTrendingCache(redisClient *redis.Client, ttl time.Duration) *TrendingCache {
	return &TrendingCache{
		redis: redisClient,
		ttl:   ttl,
	}
}

// Get returns the cached feed and true on a hit. A missing key or an
// undecodable payload is a miss, never an error the caller must handle.
func (c *TrendingCache) Get(ctx context.Context) ([]domain.PublicPost, bool) {
	payload, err := c.redis.Get(ctx, trendingKey).Bytes()
	if err != nil {
		return nil, false
	}

	var posts []domain.PublicPost
	if err := json.Unmarshal(payload, &posts); err != nil {
		return nil, false
	}

	return posts, true
}

// Set stores the feed with the configured TTL.
func (c *TrendingCache) Set(ctx context.Context, posts []domain.PublicPost) error {
	payload, err := json.Marshal(posts)
	if err != nil {
		return fmt.Errorf("failed to encode trending feed: %w", err)
	}

	if err := c.redis.Set(ctx, trendingKey, payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache trending feed: %w", err)
	}

	return nil
}

// Invalidate drops the cached feed, forcing the next read to rebuild it.
func (c *TrendingCache) Invalidate(ctx context.Context) error {
	if err := c.redis.Del(ctx, trendingKey).Err(); err != nil {
		return fmt.Errorf("failed to invalidate trending feed: %w", err)
	}

	return nil
}
