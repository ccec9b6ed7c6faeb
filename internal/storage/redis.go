package storage

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jwebster45206/trigger-engine/pkg/storage"
	"github.com/redis/go-redis/v9"
)

// DefaultGameTTL applies when no expiry is configured.
const DefaultGameTTL = 24 * time.Hour

// RedisStorage implements the Storage interface using Redis for saved games
// and the filesystem for scenarios
type RedisStorage struct {
	client      *redis.Client
	logger      *slog.Logger
	scenarioDir string
	ttl         time.Duration
	capacity    int // trigger heap size for scenarios that do not set one
}

// Ensure RedisStorage implements Storage interface
var _ storage.Storage = (*RedisStorage)(nil)

// NewRedisStorage creates a new Redis storage instance
func NewRedisStorage(redisURL, scenarioDir string, ttl time.Duration, logger *slog.Logger) (*RedisStorage, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}

	if scenarioDir == "" {
		scenarioDir = "./data/scenarios"
	}
	if ttl <= 0 {
		ttl = DefaultGameTTL
	}

	return &RedisStorage{
		client:      redis.NewClient(opt),
		logger:      logger,
		scenarioDir: scenarioDir,
		ttl:         ttl,
	}, nil
}

// SetTriggerCapacity sets the trigger heap size given to scenarios whose
// rules leave it unset. Zero keeps the engine default.
func (r *RedisStorage) SetTriggerCapacity(n int) {
	r.capacity = n
}

// Health and lifecycle methods

func (r *RedisStorage) Ping(ctx context.Context) error {
	if err := r.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}
	return nil
}

func (r *RedisStorage) Close() error {
	if err := r.client.Close(); err != nil {
		r.logger.Error("Failed to close Redis connection", "error", err)
		return err
	}
	r.logger.Info("Redis connection closed")
	return nil
}

// WaitForConnection waits for Redis to become available (used during startup)
func (r *RedisStorage) WaitForConnection(ctx context.Context) error {
	maxRetries := 30
	retryDelay := 2 * time.Second

	for i := 0; i < maxRetries; i++ {
		err := r.Ping(ctx)
		if err == nil {
			r.logger.Info("Redis connection established")
			return nil
		}
		r.logger.Debug("Redis not ready yet", "error", err, "attempt", i+1)

		select {
		case <-ctx.Done():
			return fmt.Errorf("context cancelled while waiting for redis: %w", ctx.Err())
		case <-time.After(retryDelay):
		}
	}

	return fmt.Errorf("redis did not become available after %d attempts", maxRetries)
}
