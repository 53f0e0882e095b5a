package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"deripulse/internal/domain/models"
)

// RedisCache keeps the most recent observation per ticker with a TTL, so the
// hot /latest read path can skip Postgres while the poller is healthy.
// Entries expire on their own; a stale or missing entry just means a
// repository read.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisCache connects to Redis and verifies connectivity with a ping.
func NewRedisCache(addr, password string, db int, ttl time.Duration) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("connect to redis: %w", err)
	}

	return &RedisCache{client: client, ttl: ttl}, nil
}

func latestKey(ticker string) string {
	return "latest:" + ticker
}

// SetLatest stores rec as the latest observation for its ticker.
func (c *RedisCache) SetLatest(ctx context.Context, rec models.CurrencyPrice) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal price: %w", err)
	}
	if err := c.client.Set(ctx, latestKey(rec.Ticker), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("set latest price: %w", err)
	}
	return nil
}

// GetLatest returns the cached latest observation for ticker, or (nil, nil)
// on a cache miss.
func (c *RedisCache) GetLatest(ctx context.Context, ticker string) (*models.CurrencyPrice, error) {
	data, err := c.client.Get(ctx, latestKey(ticker)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, fmt.Errorf("get latest price: %w", err)
	}

	var rec models.CurrencyPrice
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("unmarshal cached price: %w", err)
	}
	return &rec, nil
}

func (c *RedisCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *RedisCache) Close() error {
	return c.client.Close()
}
