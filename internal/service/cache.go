package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"rentrobo/internal/config"
	"rentrobo/internal/model"
)

const cacheKeyPrefix = "rentrobo:recommend:"

// RecommendationCache stores recommendation lists in Redis keyed by a hash
// of the payload.
type RecommendationCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisClient creates a Redis client from configuration
func NewRedisClient(cfg config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:         cfg.Address,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
	})
}

// NewRecommendationCache wraps client. Entries expire after ttl.
func NewRecommendationCache(client *redis.Client, ttl time.Duration) *RecommendationCache {
	return &RecommendationCache{client: client, ttl: ttl}
}

// Ping checks the Redis connection
func (c *RecommendationCache) Ping(ctx context.Context) error {
	if err := c.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}
	return nil
}

// Get returns the cached recommendations for payload. ok is false on a miss.
func (c *RecommendationCache) Get(ctx context.Context, payload model.FinalPayload) ([]model.Recommendation, bool, error) {
	key, err := CacheKey(payload)
	if err != nil {
		return nil, false, err
	}

	raw, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("cache get: %w", err)
	}

	var recs []model.Recommendation
	if err := json.Unmarshal(raw, &recs); err != nil {
		return nil, false, fmt.Errorf("cache decode: %w", err)
	}
	return recs, true, nil
}

// Set stores recs for payload
func (c *RecommendationCache) Set(ctx context.Context, payload model.FinalPayload, recs []model.Recommendation) error {
	key, err := CacheKey(payload)
	if err != nil {
		return err
	}
	raw, err := json.Marshal(recs)
	if err != nil {
		return fmt.Errorf("cache encode: %w", err)
	}
	if err := c.client.Set(ctx, key, raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("cache set: %w", err)
	}
	return nil
}

// CacheKey is the Redis key of a payload: a SHA-256 of its JSON encoding.
func CacheKey(payload model.FinalPayload) (string, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("cache key: %w", err)
	}
	sum := sha256.Sum256(raw)
	return cacheKeyPrefix + hex.EncodeToString(sum[:]), nil
}
