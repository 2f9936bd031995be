package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/cypherlabdev/parlay-calculator-service/internal/models"
)

// RedisCache persists session snapshots and evaluation results in Redis
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
	logger zerolog.Logger
}

// RedisCacheConfig holds Redis cache configuration
type RedisCacheConfig struct {
	Addr     string // e.g., "localhost:6379"
	Password string
	DB       int
	TTL      time.Duration // e.g., 24 * time.Hour
}

// NewRedisCache creates a new Redis cache
func NewRedisCache(config RedisCacheConfig, logger zerolog.Logger) *RedisCache {
	client := redis.NewClient(&redis.Options{
		Addr:     config.Addr,
		Password: config.Password,
		DB:       config.DB,
	})

	return &RedisCache{
		client: client,
		ttl:    config.TTL,
		logger: logger.With().Str("component", "redis_cache").Logger(),
	}
}

// SetSession persists a session snapshot for restore
func (c *RedisCache) SetSession(ctx context.Context, sess *models.Session) error {
	key := fmt.Sprintf("session:%s", sess.ID)

	data, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to set in Redis: %w", err)
	}

	c.logger.Debug().
		Str("key", key).
		Dur("ttl", c.ttl).
		Msg("persisted session snapshot")

	return nil
}

// GetSession retrieves a persisted session snapshot
func (c *RedisCache) GetSession(ctx context.Context, id string) (*models.Session, error) {
	key := fmt.Sprintf("session:%s", id)

	data, err := c.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, fmt.Errorf("session not found in cache")
	} else if err != nil {
		return nil, fmt.Errorf("failed to get from Redis: %w", err)
	}

	var sess models.Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}

	return &sess, nil
}

// DeleteSession removes a persisted session snapshot
func (c *RedisCache) DeleteSession(ctx context.Context, id string) error {
	key := fmt.Sprintf("session:%s", id)
	if err := c.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("failed to delete from Redis: %w", err)
	}
	return nil
}

// SetResult caches one evaluation result
func (c *RedisCache) SetResult(ctx context.Context, result *models.EvaluationResult) error {
	key := fmt.Sprintf("result:%s", result.RequestID)

	data, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to marshal result: %w", err)
	}

	if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to set in Redis: %w", err)
	}

	c.logger.Debug().
		Str("key", key).
		Dur("ttl", c.ttl).
		Msg("cached evaluation result")

	return nil
}

// GetResult retrieves a cached evaluation result
func (c *RedisCache) GetResult(ctx context.Context, requestID string) (*models.EvaluationResult, error) {
	key := fmt.Sprintf("result:%s", requestID)

	data, err := c.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, fmt.Errorf("result not found in cache")
	} else if err != nil {
		return nil, fmt.Errorf("failed to get from Redis: %w", err)
	}

	var result models.EvaluationResult
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("failed to unmarshal result: %w", err)
	}

	return &result, nil
}

// SetResultBatch caches multiple evaluation results
func (c *RedisCache) SetResultBatch(ctx context.Context, results []*models.EvaluationResult) error {
	if len(results) == 0 {
		return nil
	}

	// Use pipeline for batch operations
	pipe := c.client.Pipeline()

	for _, result := range results {
		key := fmt.Sprintf("result:%s", result.RequestID)
		data, err := json.Marshal(result)
		if err != nil {
			c.logger.Error().Err(err).Msg("failed to marshal result")
			continue
		}
		pipe.Set(ctx, key, data, c.ttl)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to execute pipeline: %w", err)
	}

	c.logger.Info().
		Int("count", len(results)).
		Msg("cached batch of evaluation results")

	return nil
}

// Ping checks Redis connection
func (c *RedisCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Close closes the Redis connection
func (c *RedisCache) Close() error {
	return c.client.Close()
}
