package infra

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/seenimoa/tickerpulse/pkg/logger"
	"github.com/seenimoa/tickerpulse/pkg/models"
)

// RedisConfig holds connection settings for the Redis cache backend.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// RedisCache stores reports as JSON with a Redis-side TTL, so several
// server instances can share results.
type RedisCache struct {
	rdb *redis.Client
	ttl time.Duration
	log *logger.Logger
}

// NewRedisCache connects to Redis and verifies the connection.
func NewRedisCache(ctx context.Context, cfg RedisConfig, ttl time.Duration, log *logger.Logger) (*RedisCache, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, err
	}
	if log == nil {
		log = logger.Get()
	}
	return &RedisCache{rdb: rdb, ttl: ttl, log: log.Named("redis")}, nil
}

// Get returns the cached report. Misses, expired keys and decode failures
// are all reported as a miss.
func (c *RedisCache) Get(ctx context.Context, key string) (*models.SentimentReport, bool) {
	data, err := c.rdb.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.log.Warnw("redis get failed", "key", key, "error", err)
		}
		return nil, false
	}
	var report models.SentimentReport
	if err := json.Unmarshal(data, &report); err != nil {
		c.log.Warnw("redis value undecodable", "key", key, "error", err)
		return nil, false
	}
	return &report, true
}

// Set stores a report. Failures are logged; the cache is best effort.
func (c *RedisCache) Set(ctx context.Context, key string, report *models.SentimentReport) {
	data, err := json.Marshal(report)
	if err != nil {
		c.log.Warnw("redis encode failed", "key", key, "error", err)
		return
	}
	if err := c.rdb.Set(ctx, key, data, c.ttl).Err(); err != nil {
		c.log.Warnw("redis set failed", "key", key, "error", err)
	}
}

// Health checks Redis connectivity.
func (c *RedisCache) Health(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}

// Close closes the Redis connection.
func (c *RedisCache) Close() error {
	return c.rdb.Close()
}
