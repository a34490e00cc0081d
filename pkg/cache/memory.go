package cache

import (
	"container/list"
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

type memEntry struct {
	key      string
	value    []byte
	expireAt time.Time
}

func (e *memEntry) expired(now time.Time) bool {
	return !now.Before(e.expireAt)
}

// MemoryCache is an in-process LRU with per-entry expiry. Values are encoded the same
// way RedisCache encodes them so the two are interchangeable.
type MemoryCache struct {
	mu         sync.Mutex
	items      map[string]*list.Element
	order      *list.List // front is most recently used
	maxEntries int
	defaultTTL time.Duration
	now        func() time.Time

	done      chan struct{}
	closeOnce sync.Once
}

var _ Store = (*MemoryCache)(nil)

func NewMemoryCache(opts ...MemoryOption) *MemoryCache {
	cfg := &memoryConfig{
		maxEntries: 1000,
		sweepEvery: 5 * time.Minute,
		defaultTTL: 24 * time.Hour,
	}
	for _, o := range opts {
		o(cfg)
	}

	mc := &MemoryCache{
		items:      make(map[string]*list.Element),
		order:      list.New(),
		maxEntries: cfg.maxEntries,
		defaultTTL: cfg.defaultTTL,
		now:        time.Now,
		done:       make(chan struct{}),
	}
	go mc.sweep(cfg.sweepEvery)
	return mc
}

func (mc *MemoryCache) Set(_ context.Context, key string, value interface{}, ttl time.Duration) error {
	data, err := encode(value)
	if err != nil {
		return err
	}
	if ttl <= 0 {
		ttl = mc.defaultTTL
	}

	mc.mu.Lock()
	defer mc.mu.Unlock()
	mc.putLocked(key, data, mc.now().Add(ttl))
	return nil
}

func (mc *MemoryCache) putLocked(key string, data []byte, expireAt time.Time) {
	if el, ok := mc.items[key]; ok {
		e := el.Value.(*memEntry)
		e.value, e.expireAt = data, expireAt
		mc.order.MoveToFront(el)
		return
	}
	for mc.order.Len() >= mc.maxEntries {
		mc.removeLocked(mc.order.Back())
	}
	mc.items[key] = mc.order.PushFront(&memEntry{key: key, value: data, expireAt: expireAt})
}

// lookupLocked returns a live entry and marks it used; expired entries are dropped.
func (mc *MemoryCache) lookupLocked(key string) *memEntry {
	el, ok := mc.items[key]
	if !ok {
		return nil
	}
	e := el.Value.(*memEntry)
	if e.expired(mc.now()) {
		mc.removeLocked(el)
		return nil
	}
	mc.order.MoveToFront(el)
	return e
}

func (mc *MemoryCache) removeLocked(el *list.Element) {
	if el == nil {
		return
	}
	mc.order.Remove(el)
	delete(mc.items, el.Value.(*memEntry).key)
}

func (mc *MemoryCache) Get(_ context.Context, key string, dest interface{}) error {
	mc.mu.Lock()
	e := mc.lookupLocked(key)
	var data []byte
	if e != nil {
		data = e.value
	}
	mc.mu.Unlock()

	if e == nil {
		return ErrCacheMiss
	}
	return decode(data, dest)
}

func (mc *MemoryCache) Delete(_ context.Context, keys ...string) error {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	for _, k := range keys {
		mc.removeLocked(mc.items[k])
	}
	return nil
}

func (mc *MemoryCache) TryLock(_ context.Context, key string, ttl time.Duration) (string, bool, error) {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	if mc.lookupLocked(key) != nil {
		return "", false, nil
	}
	token := uuid.NewString()
	mc.putLocked(key, []byte(token), mc.now().Add(ttl))
	return token, true, nil
}

func (mc *MemoryCache) Unlock(_ context.Context, key, token string) error {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	e := mc.lookupLocked(key)
	if e == nil || string(e.value) != token {
		return ErrLockNotHeld
	}
	mc.removeLocked(mc.items[key])
	return nil
}

// Len counts stored entries, including expired ones not yet swept.
func (mc *MemoryCache) Len() int {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	return mc.order.Len()
}

func (mc *MemoryCache) sweep(every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-mc.done:
			return
		case <-ticker.C:
		}

		mc.mu.Lock()
		now := mc.now()
		for el := mc.order.Back(); el != nil; {
			prev := el.Prev()
			if el.Value.(*memEntry).expired(now) {
				mc.removeLocked(el)
			}
			el = prev
		}
		mc.mu.Unlock()
	}
}

// Close stops the sweeper.
func (mc *MemoryCache) Close() error {
	mc.closeOnce.Do(func() { close(mc.done) })
	return nil
}
