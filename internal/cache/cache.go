package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

// Cache is a redis-backed byte cache with singleflight collapse, so a burst
// of misses on the same key produces a single load.
type Cache struct {
	rdb *redis.Client
	sf  singleflight.Group
}

func New(rdb *redis.Client) *Cache {
	return &Cache{rdb: rdb}
}

// GetOrLoad returns the cached bytes for key, loading and storing them for
// ttl on a miss.
func (c *Cache) GetOrLoad(ctx context.Context, key string, ttl time.Duration, load func(context.Context) ([]byte, error)) ([]byte, error) {
	if b, err := c.rdb.Get(ctx, key).Bytes(); err == nil {
		return b, nil
	}
	v, err, _ := c.sf.Do(key, func() (any, error) {
		b, e := load(ctx)
		if e != nil {
			return nil, e
		}
		_ = c.rdb.Set(ctx, key, b, ttl).Err()
		return b, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]byte), nil
}

// Invalidate drops keys after a mutation.
func (c *Cache) Invalidate(ctx context.Context, keys ...string) {
	_ = c.rdb.Del(ctx, keys...).Err()
}
