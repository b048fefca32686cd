package attendance

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// CountsCache keeps derived per-day counts. It is never authoritative.
type CountsCache interface {
	Get(ctx context.Context, date string) (DayCounts, bool, error)
	Set(ctx context.Context, date string, counts DayCounts) error
	Invalidate(ctx context.Context, date string) error
}

// RedisCountsCache stores day counts as JSON strings with a TTL.
type RedisCountsCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisCountsCache creates a cache; ttl <= 0 defaults to ten minutes.
func NewRedisCountsCache(client *redis.Client, ttl time.Duration) *RedisCountsCache {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &RedisCountsCache{client: client, ttl: ttl}
}

func countsKey(date string) string { return "attendance:counts:" + date }

// Get returns the cached counts and whether they were present.
func (c *RedisCountsCache) Get(ctx context.Context, date string) (DayCounts, bool, error) {
	raw, err := c.client.Get(ctx, countsKey(date)).Bytes()
	if errors.Is(err, redis.Nil) {
		return DayCounts{}, false, nil
	}
	if err != nil {
		return DayCounts{}, false, err
	}
	var counts DayCounts
	if err := json.Unmarshal(raw, &counts); err != nil {
		return DayCounts{}, false, nil
	}
	return counts, true, nil
}

// Set stores counts for date.
func (c *RedisCountsCache) Set(ctx context.Context, date string, counts DayCounts) error {
	raw, err := json.Marshal(counts)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, countsKey(date), raw, c.ttl).Err()
}

// Invalidate drops the counts of date.
func (c *RedisCountsCache) Invalidate(ctx context.Context, date string) error {
	return c.client.Del(ctx, countsKey(date)).Err()
}

type noCache struct{}

func (noCache) Get(context.Context, string) (DayCounts, bool, error) { return DayCounts{}, false, nil }
func (noCache) Set(context.Context, string, DayCounts) error         { return nil }
func (noCache) Invalidate(context.Context, string) error             { return nil }
