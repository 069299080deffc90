package cache

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// PageCache holds rendered feed pages for a bounded time window. Writers that
// change feed contents must call Invalidate before acknowledging the write,
// so staleness is bounded by zero rather than by the TTL alone.
type PageCache interface {
	Get(ctx context.Context, key string) (string, bool)
	Set(ctx context.Context, key, value string, ttl time.Duration)
	Invalidate(ctx context.Context, key string)
}

// RedisPageCache backs PageCache with redis.
type RedisPageCache struct {
	rdb    *redis.Client
	prefix string
}

func NewRedisPageCache(addr string) *RedisPageCache {
	return &RedisPageCache{
		rdb:    redis.NewClient(&redis.Options{Addr: addr}),
		prefix: "pages:",
	}
}

func (c *RedisPageCache) Get(ctx context.Context, key string) (string, bool) {
	val, err := c.rdb.Get(ctx, c.prefix+key).Result()
	if err != nil {
		return "", false
	}
	return val, true
}

func (c *RedisPageCache) Set(ctx context.Context, key, value string, ttl time.Duration) {
	c.rdb.Set(ctx, c.prefix+key, value, ttl)
}

func (c *RedisPageCache) Invalidate(ctx context.Context, key string) {
	c.rdb.Del(ctx, c.prefix+key)
}

// MemoryPageCache is the in-process fallback used when no redis address is
// configured, and in tests.
type MemoryPageCache struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
}

type memoryEntry struct {
	value     string
	expiresAt time.Time
}

func NewMemoryPageCache() *MemoryPageCache {
	return &MemoryPageCache{entries: make(map[string]memoryEntry)}
}

func (c *MemoryPageCache) Get(_ context.Context, key string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	entry, ok := c.entries[key]
	if !ok {
		return "", false
	}
	if time.Now().After(entry.expiresAt) {
		delete(c.entries, key)
		return "", false
	}
	return entry.value, true
}

func (c *MemoryPageCache) Set(_ context.Context, key, value string, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = memoryEntry{value: value, expiresAt: time.Now().Add(ttl)}
}

func (c *MemoryPageCache) Invalidate(_ context.Context, key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
}
