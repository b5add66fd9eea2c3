package cache

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// closedAddr returns a loopback address nothing is listening on.
func closedAddr(t *testing.T) string {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	require.NoError(t, ln.Close())
	return addr
}

func TestNewRedis_InvalidURL(t *testing.T) {
	_, err := NewRedis("not-a-redis-url", nil)
	assert.Error(t, err)
}

func TestNewRedis_Unreachable(t *testing.T) {
	_, err := NewRedis("redis://"+closedAddr(t)+"/0", &RedisConfig{
		PoolSize:    1,
		DialTimeout: 200 * time.Millisecond,
	})
	assert.Error(t, err)
}

func TestSearchCache_ErrorsWhenUnreachable(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        closedAddr(t),
		DialTimeout: 200 * time.Millisecond,
		MaxRetries:  -1,
	})
	c := NewSearchCache(client)
	defer c.Close()

	ctx := context.Background()

	var dest map[string]any
	found, err := c.GetJSON(ctx, "pulse:search:top:crm", &dest)
	assert.Error(t, err)
	assert.False(t, found)

	assert.Error(t, c.SetJSON(ctx, "pulse:search:top:crm", map[string]int{"a": 1}, time.Minute))
	assert.Error(t, c.Ping(ctx))
}

func TestSearchCache_SetJSONRejectsUnencodable(t *testing.T) {
	c := NewSearchCache(redis.NewClient(&redis.Options{Addr: closedAddr(t)}))
	defer c.Close()

	err := c.SetJSON(context.Background(), "k", make(chan int), time.Minute)
	assert.Error(t, err)
}
