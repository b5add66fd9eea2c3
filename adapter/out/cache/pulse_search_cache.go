// Package cache stores serialized search results in Redis.
package cache

import (
	"context"
	"errors"
	"time"

	"github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"

	"pulse_server/core/port/out"
)

// SearchCache is the Redis backed out.ResultCache.
type SearchCache struct {
	client *redis.Client
}

var _ out.ResultCache = (*SearchCache)(nil)

func NewSearchCache(client *redis.Client) *SearchCache {
	return &SearchCache{client: client}
}

// GetJSON reports false when the key is absent.
func (c *SearchCache) GetJSON(ctx context.Context, key string, dest any) (bool, error) {
	data, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	if err := json.Unmarshal(data, dest); err != nil {
		return false, err
	}
	return true, nil
}

// SetJSON stores value as JSON with the given ttl.
func (c *SearchCache) SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, key, data, ttl).Err()
}

func (c *SearchCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Stats is the connection pool snapshot shown on /ready.
func (c *SearchCache) Stats() RedisStats {
	stat := c.client.PoolStats()
	return RedisStats{
		Hits:       stat.Hits,
		Misses:     stat.Misses,
		Timeouts:   stat.Timeouts,
		TotalConns: stat.TotalConns,
		IdleConns:  stat.IdleConns,
		StaleConns: stat.StaleConns,
	}
}

func (c *SearchCache) Close() error {
	return c.client.Close()
}
