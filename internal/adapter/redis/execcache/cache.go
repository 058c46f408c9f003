package execcache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/codecampus/gradebox/internal/core/ports/primary"
	"github.com/codecampus/gradebox/internal/core/ports/secondary"
	"github.com/codecampus/gradebox/internal/domain"
)

const resultKeyPrefix = "exec:"

var _ secondary.ExecutionCache = (*ResultCache)(nil)

// ResultCache implements the ExecutionCache interface with Redis
type ResultCache struct {
	redisClient *redis.Client
	logger      primary.Logger
	ttl         time.Duration
}

// NewResultCache creates a new Redis execution result cache
func NewResultCache(redisClient *redis.Client, logger primary.Logger, ttl time.Duration) *ResultCache {
	return &ResultCache{
		redisClient: redisClient,
		logger:      logger,
		ttl:         ttl,
	}
}

// Get retrieves a cached execution result by fingerprint
func (c *ResultCache) Get(ctx context.Context, key string) (*domain.ExecutionResult, error) {
	resultJSON, err := c.redisClient.Get(ctx, resultKeyPrefix+key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		c.logger.Error("Failed to get cached result", "error", err)
		return nil, fmt.Errorf("failed to get cached result: %w", err)
	}

	var result domain.ExecutionResult
	if err := json.Unmarshal(resultJSON, &result); err != nil {
		c.logger.Error("Failed to unmarshal cached result", "error", err)
		return nil, fmt.Errorf("failed to unmarshal cached result: %w", err)
	}

	return &result, nil
}

// Set stores an execution result under its fingerprint
func (c *ResultCache) Set(ctx context.Context, key string, result *domain.ExecutionResult) error {
	resultJSON, err := json.Marshal(result)
	if err != nil {
		c.logger.Error("Failed to marshal result", "error", err)
		return fmt.Errorf("failed to marshal result: %w", err)
	}

	if err := c.redisClient.Set(ctx, resultKeyPrefix+key, resultJSON, c.ttl).Err(); err != nil {
		c.logger.Error("Failed to cache result", "error", err)
		return fmt.Errorf("failed to cache result: %w", err)
	}

	return nil
}
