package redis

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/custodia-labs/twinsync/internal/core/domain"
	"github.com/custodia-labs/twinsync/internal/core/ports/driven"
)

// Ensure Cache implements the interface.
var _ driven.ContentCache = (*Cache)(nil)

// Default configuration values.
const (
	DefaultKeyPrefix = "twinsync:chunk:"
	DefaultTTL       = time.Hour
	DefaultPoolSize  = 10

	scanCount = 100
)

// Config holds connection settings.
type Config struct {
	// Addr is host:port or a redis:// / rediss:// URL.
	Addr string

	Password string
	DB       int

	// KeyPrefix namespaces cache keys (default: twinsync:chunk:).
	KeyPrefix string

	// TTL bounds how long resolved content is served (default: 1h).
	TTL time.Duration
}

// Cache is a ContentCache backed by Redis.
type Cache struct {
	client *goredis.Client
	prefix string
	ttl    time.Duration
}

// Options converts the config into client options.
func (c Config) Options() (*goredis.Options, error) {
	if c.Addr == "" {
		return nil, fmt.Errorf("redis: address required: %w", domain.ErrInvalidInput)
	}
	if strings.HasPrefix(c.Addr, "redis://") || strings.HasPrefix(c.Addr, "rediss://") {
		opts, err := goredis.ParseURL(c.Addr)
		if err != nil {
			return nil, fmt.Errorf("redis: parsing url: %w", err)
		}
		return opts, nil
	}
	return &goredis.Options{
		Addr:     c.Addr,
		Password: c.Password,
		DB:       c.DB,
		PoolSize: DefaultPoolSize,
	}, nil
}

// New creates the client and verifies the connection.
func New(ctx context.Context, cfg Config) (*Cache, error) {
	opts, err := cfg.Options()
	if err != nil {
		return nil, err
	}
	client := goredis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w: %w", domain.ErrStoreUnavailable, err)
	}
	return NewWithClient(client, cfg), nil
}

// NewWithClient wraps an existing client.
func NewWithClient(client *goredis.Client, cfg Config) *Cache {
	prefix := cfg.KeyPrefix
	if prefix == "" {
		prefix = DefaultKeyPrefix
	}
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Cache{client: client, prefix: prefix, ttl: ttl}
}

func (c *Cache) key(id string) string {
	return c.prefix + id
}

// Get returns the cached content or domain.ErrNotFound on a miss.
func (c *Cache) Get(ctx context.Context, id string) (string, error) {
	val, err := c.client.Get(ctx, c.key(id)).Result()
	if errors.Is(err, goredis.Nil) {
		return "", domain.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("redis get %s: %w", id, err)
	}
	return val, nil
}

// Set stores content with the configured TTL.
func (c *Cache) Set(ctx context.Context, id, content string) error {
	if err := c.client.Set(ctx, c.key(id), content, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", id, err)
	}
	return nil
}

// Delete removes the entries for ids.
func (c *Cache) Delete(ctx context.Context, ids ...string) error {
	if len(ids) == 0 {
		return nil
	}
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = c.key(id)
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}

// Clear removes every entry under the key prefix.
func (c *Cache) Clear(ctx context.Context) error {
	var keys []string
	iter := c.client.Scan(ctx, 0, c.prefix+"*", scanCount).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
		if len(keys) == scanCount {
			if err := c.client.Del(ctx, keys...).Err(); err != nil {
				return fmt.Errorf("redis del: %w", err)
			}
			keys = keys[:0]
		}
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("redis scan: %w", err)
	}
	if len(keys) > 0 {
		if err := c.client.Del(ctx, keys...).Err(); err != nil {
			return fmt.Errorf("redis del: %w", err)
		}
	}
	return nil
}

// Close releases the connection pool.
func (c *Cache) Close() error {
	return c.client.Close()
}
