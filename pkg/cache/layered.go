package cache

import (
	"context"
	"time"
)

// LayeredCache answers from process memory first and falls back to Redis. Writes go
// through to Redis, which stays the source of truth; leases are always taken in Redis.
type LayeredCache struct {
	l1    *MemoryCache
	l2    *RedisCache
	l1TTL time.Duration
}

var _ Store = (*LayeredCache)(nil)

func NewLayeredCache(l2 *RedisCache, opts ...LayeredOption) *LayeredCache {
	cfg := &layeredConfig{l1Entries: 1000, l1TTL: time.Minute}
	for _, o := range opts {
		o(cfg)
	}
	return &LayeredCache{
		l1:    NewMemoryCache(WithMemoryMaxEntries(cfg.l1Entries), WithMemoryDefaultTTL(cfg.l1TTL)),
		l2:    l2,
		l1TTL: cfg.l1TTL,
	}
}

// l1Expiry never lets L1 outlive the L2 entry.
func (lc *LayeredCache) l1Expiry(remaining time.Duration) time.Duration {
	if remaining > 0 && remaining < lc.l1TTL {
		return remaining
	}
	return lc.l1TTL
}

func (lc *LayeredCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	data, err := encode(value)
	if err != nil {
		return err
	}
	if err := lc.l2.Set(ctx, key, data, ttl); err != nil {
		return err
	}
	return lc.l1.Set(ctx, key, data, lc.l1Expiry(ttl))
}

func (lc *LayeredCache) Get(ctx context.Context, key string, dest interface{}) error {
	var data []byte
	if err := lc.l1.Get(ctx, key, &data); err == nil {
		return decode(data, dest)
	}

	data, remaining, err := lc.l2.getRaw(ctx, key)
	if err != nil {
		return err
	}
	_ = lc.l1.Set(ctx, key, data, lc.l1Expiry(remaining))
	return decode(data, dest)
}

func (lc *LayeredCache) Delete(ctx context.Context, keys ...string) error {
	_ = lc.l1.Delete(ctx, keys...)
	return lc.l2.Delete(ctx, keys...)
}

func (lc *LayeredCache) TryLock(ctx context.Context, key string, ttl time.Duration) (string, bool, error) {
	return lc.l2.TryLock(ctx, key, ttl)
}

func (lc *LayeredCache) Unlock(ctx context.Context, key, token string) error {
	return lc.l2.Unlock(ctx, key, token)
}

// Close stops the memory layer only; the Redis client belongs to whoever created it.
func (lc *LayeredCache) Close() error {
	return lc.l1.Close()
}
