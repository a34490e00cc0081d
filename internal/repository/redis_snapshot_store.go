package repository

import (
	"context"
	"errors"
	"time"

	"CrediScan/internal/domain/models"
	domrepo "CrediScan/internal/domain/repository"
	"CrediScan/pkg/cache"
)

const (
	snapshotKey = "news:snapshot"
	leaseKey    = "news:refresh-lease"
)

// RedisSnapshotStore mirrors the news snapshot through a shared cache so replicas reuse one fetch.
type RedisSnapshotStore struct {
	c   cache.Store
	ttl time.Duration
}

var _ domrepo.SnapshotStore = (*RedisSnapshotStore)(nil)

func NewRedisSnapshotStore(c cache.Store, ttl time.Duration) *RedisSnapshotStore {
	return &RedisSnapshotStore{c: c, ttl: ttl}
}

// Load returns nil without error when nothing is stored.
func (s *RedisSnapshotStore) Load(ctx context.Context) (*models.NewsSnapshot, error) {
	snap, err := cache.Fetch[models.NewsSnapshot](ctx, s.c, snapshotKey)
	if errors.Is(err, cache.ErrCacheMiss) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &snap, nil
}

func (s *RedisSnapshotStore) Save(ctx context.Context, snap *models.NewsSnapshot) error {
	return s.c.Set(ctx, snapshotKey, snap, s.ttl)
}

func (s *RedisSnapshotStore) Lease(ctx context.Context, ttl time.Duration) (func(), bool, error) {
	token, ok, err := s.c.TryLock(ctx, leaseKey, ttl)
	if err != nil || !ok {
		return func() {}, false, err
	}
	release := func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		// an expired lease is harmless here
		_ = s.c.Unlock(ctx, leaseKey, token)
	}
	return release, true, nil
}
