package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"electron-shop/api/pkg/util"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	keyPrefix  = "catalog:v"
	VersionKey = "catalog:version"
	DefaultTTL = 5 * time.Minute
)

// Cache is a read-through cache for catalog reads. Failures behave as misses.
type Cache interface {
	Get(ctx context.Context, key string, dst interface{}) bool
	Set(ctx context.Context, key string, value interface{})
	// Invalidate drops every cached entry.
	Invalidate(ctx context.Context)
}

// Nop never stores anything.
type Nop struct{}

func (Nop) Get(context.Context, string, interface{}) bool { return false }
func (Nop) Set(context.Context, string, interface{})      {}
func (Nop) Invalidate(context.Context)                    {}

// Catalog keeps entries under a version number that every write bumps, so all
// keys go stale at once without scanning.
type Catalog struct {
	redis *redis.Client
	ttl   time.Duration
}

func NewCatalog(client *redis.Client, ttl time.Duration) *Catalog {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Catalog{redis: client, ttl: ttl}
}

func (c *Catalog) version(ctx context.Context) (int64, error) {
	v, err := c.redis.Get(ctx, VersionKey).Int64()
	if errors.Is(err, redis.Nil) {
		if err := c.redis.SetNX(ctx, VersionKey, 1, 0).Err(); err != nil {
			return 0, err
		}
		return c.redis.Get(ctx, VersionKey).Int64()
	}
	return v, err
}

func (c *Catalog) key(version int64, key string) string {
	return fmt.Sprintf("%s%d:%s", keyPrefix, version, key)
}

func (c *Catalog) Get(ctx context.Context, key string, dst interface{}) bool {
	v, err := c.version(ctx)
	if err != nil {
		return false
	}
	raw, err := c.redis.Get(ctx, c.key(v, key)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			util.LogWarning("cache read failed", zap.String("key", key), zap.Error(err))
		}
		return false
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		util.LogWarning("cache entry unreadable", zap.String("key", key), zap.Error(err))
		return false
	}
	return true
}

func (c *Catalog) Set(ctx context.Context, key string, value interface{}) {
	data, err := json.Marshal(value)
	if err != nil {
		util.LogWarning("cache encode failed", zap.String("key", key), zap.Error(err))
		return
	}
	v, err := c.version(ctx)
	if err != nil {
		return
	}
	if err := c.redis.Set(ctx, c.key(v, key), data, c.ttl).Err(); err != nil {
		util.LogWarning("cache write failed", zap.String("key", key), zap.Error(err))
	}
}

func (c *Catalog) Invalidate(ctx context.Context) {
	v, err := c.redis.Incr(ctx, VersionKey).Result()
	if err != nil {
		util.LogError("cache invalidation failed", err)
		return
	}
	util.LogInfo("catalog cache invalidated", zap.Int64("version", v))
	_ = Publish(ctx, c.redis, MessageInvalidate, fmt.Sprint(v))
}
