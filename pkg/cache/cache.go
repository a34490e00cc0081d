package cache

import (
	"context"
	"errors"
	"time"
)

var (
	ErrCacheMiss = errors.New("cache: key not found")
	// ErrLockNotHeld is returned by Unlock when the lease expired or belongs to someone else.
	ErrLockNotHeld = errors.New("cache: lock not held")
)

// Service is the key/value surface shared by the memory, Redis and layered caches.
// Values are JSON encoded unless they are already a string or []byte.
type Service interface {
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Get(ctx context.Context, key string, dest interface{}) error
	Delete(ctx context.Context, keys ...string) error
}

// Locker hands out short exclusive leases. The token from TryLock must be passed to Unlock.
type Locker interface {
	TryLock(ctx context.Context, key string, ttl time.Duration) (token string, ok bool, err error)
	Unlock(ctx context.Context, key, token string) error
}

// Store is a cache that can also coordinate work through leases.
type Store interface {
	Service
	Locker
}

// Fetch decodes key into a new T.
func Fetch[T any](ctx context.Context, c Service, key string) (T, error) {
	var v T
	err := c.Get(ctx, key, &v)
	return v, err
}
