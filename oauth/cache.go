package oauth

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	redis "github.com/redis/go-redis/v9"
	"golang.org/x/oauth2"
)

// ErrCacheMiss indicates no cached token exists for the given key. Get does
// not check expiry: MemoryCache returns a stored token even after it has
// expired, and RedisCache returns it until the entry's Redis TTL runs out.
var ErrCacheMiss = errors.New("oauth: token not found in cache")

// Cache persists issued tokens keyed by a caller-chosen identifier
// (typically the MCP server's origin), so a reconnect doesn't force the
// resource owner through the authorization-code flow again while a
// refresh token remains valid.
type Cache interface {
	Get(ctx context.Context, key string) (*oauth2.Token, error)
	Put(ctx context.Context, key string, tok *oauth2.Token) error
	Delete(ctx context.Context, key string) error
}

// MemoryCache is an in-process Cache for single-instance clients and tests.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string]*oauth2.Token
}

// NewMemoryCache creates an empty MemoryCache.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{entries: make(map[string]*oauth2.Token)}
}

func (c *MemoryCache) Get(_ context.Context, key string) (*oauth2.Token, error) {
	c.mu.RLock()
	tok, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok {
		return nil, ErrCacheMiss
	}
	return tok, nil
}

func (c *MemoryCache) Put(_ context.Context, key string, tok *oauth2.Token) error {
	c.mu.Lock()
	c.entries[key] = tok
	c.mu.Unlock()
	return nil
}

func (c *MemoryCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
	return nil
}

// RedisCache is a Cache backed by Redis, for clients that run as multiple
// replicas sharing a single authorization grant.
type RedisCache struct {
	rdb    *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedisCache creates a Redis-backed Cache. ttl bounds how long an entry
// is kept when the token carries no usable expiry of its own; 0 disables
// the floor and relies entirely on the token's expiry.
func NewRedisCache(rdb *redis.Client, prefix string, ttl time.Duration) *RedisCache {
	if prefix == "" {
		prefix = "mcp:oauth:"
	}
	return &RedisCache{rdb: rdb, prefix: prefix, ttl: ttl}
}

func (c *RedisCache) key(key string) string { return c.prefix + key }

func (c *RedisCache) Get(ctx context.Context, key string) (*oauth2.Token, error) {
	raw, err := c.rdb.Get(ctx, c.key(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrCacheMiss
		}
		return nil, err
	}
	var tok oauth2.Token
	if err := json.Unmarshal(raw, &tok); err != nil {
		return nil, err
	}
	return &tok, nil
}

func (c *RedisCache) Put(ctx context.Context, key string, tok *oauth2.Token) error {
	data, err := json.Marshal(tok)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, c.key(key), data, cacheTTL(tok, c.ttl)).Err()
}

func (c *RedisCache) Delete(ctx context.Context, key string) error {
	return c.rdb.Del(ctx, c.key(key)).Err()
}

// cacheTTL derives a Redis expiry from the token's own expiry, falling
// back to floor when the token has none (e.g. a non-expiring access token
// paired with a long-lived refresh token).
func cacheTTL(tok *oauth2.Token, floor time.Duration) time.Duration {
	if tok.Expiry.IsZero() {
		return floor
	}
	until := time.Until(tok.Expiry)
	if until <= 0 {
		return time.Second
	}
	if floor > until {
		return floor
	}
	return until
}
