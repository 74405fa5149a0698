package cache

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"GrantReport/internal/config"
	"GrantReport/internal/ports"
)

const keyPrefix = "grant-report:"

// NewRedisClient builds a go-redis client from configuration.
func NewRedisClient(cfg config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:         cfg.Address,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})
}

// RedisReportCache stores serialised reports keyed by store generation and anchor day.
type RedisReportCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

var _ ports.ReportCache = (*RedisReportCache)(nil)

// NewRedisReportCache wires a client; entries expire after ttl.
func NewRedisReportCache(client *redis.Client, ttl time.Duration, logger *slog.Logger) *RedisReportCache {
	return &RedisReportCache{client: client, ttl: ttl, logger: logger}
}

// Ping tests the Redis connection.
func (c *RedisReportCache) Ping(ctx context.Context) error {
	if err := c.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}
	return nil
}

func reportKey(generation int64, day string) string {
	return keyPrefix + strconv.FormatInt(generation, 10) + ":" + day
}

// Get returns the cached report for generation and day; ok is false on a miss.
func (c *RedisReportCache) Get(ctx context.Context, generation int64, day string) ([]byte, bool, error) {
	payload, err := c.client.Get(ctx, reportKey(generation, day)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get cached report: %w", err)
	}
	return payload, true, nil
}

// Set stores payload for generation and day.
func (c *RedisReportCache) Set(ctx context.Context, generation int64, day string, payload []byte) error {
	if err := c.client.Set(ctx, reportKey(generation, day), payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("set cached report: %w", err)
	}
	return nil
}

// Invalidate drops every cached report.
func (c *RedisReportCache) Invalidate(ctx context.Context) error {
	var (
		cursor  uint64
		removed int
	)
	for {
		keys, next, err := c.client.Scan(ctx, cursor, keyPrefix+"*", 100).Result()
		if err != nil {
			return fmt.Errorf("scan cached reports: %w", err)
		}
		if len(keys) > 0 {
			if err := c.client.Del(ctx, keys...).Err(); err != nil {
				return fmt.Errorf("delete cached reports: %w", err)
			}
			removed += len(keys)
		}
		cursor = next
		if cursor == 0 {
			break
		}
	}

	if c.logger != nil {
		c.logger.Debug("report cache invalidated", "keys", removed)
	}
	return nil
}

// Close releases the underlying connection pool.
func (c *RedisReportCache) Close() error {
	return c.client.Close()
}
