package cache

import (
	"context"
	"errors"
	"testing"
	"time"
)

type sample struct {
	Name  string  `json:"name"`
	Score float64 `json:"score"`
}

func TestMemoryCache_TypedRoundTrip(t *testing.T) {
	mc := NewMemoryCache()
	defer mc.Close()
	ctx := context.Background()

	if err := mc.Set(ctx, "k", sample{Name: "a", Score: 1.5}, time.Minute); err != nil {
		t.Fatalf("Set: %v", err)
	}
	got, err := Fetch[sample](ctx, mc, "k")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Name != "a" || got.Score != 1.5 {
		t.Fatalf("unexpected value %+v", got)
	}

	if err := mc.Set(ctx, "s", "plain", time.Minute); err != nil {
		t.Fatal(err)
	}
	var s string
	if err := mc.Get(ctx, "s", &s); err != nil || s != "plain" {
		t.Fatalf("string get: %q %v", s, err)
	}
}

func TestMemoryCache_Expiry(t *testing.T) {
	mc := NewMemoryCache()
	defer mc.Close()
	now := time.Unix(1000, 0)
	mc.now = func() time.Time { return now }
	ctx := context.Background()

	_ = mc.Set(ctx, "k", 1, time.Second)
	now = now.Add(2 * time.Second)

	var v int
	if err := mc.Get(ctx, "k", &v); !errors.Is(err, ErrCacheMiss) {
		t.Fatalf("want ErrCacheMiss, got %v", err)
	}
	if mc.Len() != 0 {
		t.Fatalf("expired entry should be dropped on read, len=%d", mc.Len())
	}
}

func TestMemoryCache_EvictsLeastRecentlyUsed(t *testing.T) {
	mc := NewMemoryCache(WithMemoryMaxEntries(2))
	defer mc.Close()
	ctx := context.Background()

	_ = mc.Set(ctx, "a", 1, time.Hour)
	_ = mc.Set(ctx, "b", 2, time.Hour)
	var v int
	_ = mc.Get(ctx, "a", &v) // a is now more recent than b
	_ = mc.Set(ctx, "c", 3, time.Hour)

	if err := mc.Get(ctx, "b", &v); !errors.Is(err, ErrCacheMiss) {
		t.Fatal("b should have been evicted")
	}
	for _, k := range []string{"a", "c"} {
		if err := mc.Get(ctx, k, &v); err != nil {
			t.Fatalf("%s should remain: %v", k, err)
		}
	}
	if mc.Len() != 2 {
		t.Fatalf("want 2 entries, got %d", mc.Len())
	}
}

func TestMemoryCache_Delete(t *testing.T) {
	mc := NewMemoryCache()
	defer mc.Close()
	ctx := context.Background()

	_ = mc.Set(ctx, "a", 1, time.Hour)
	if err := mc.Delete(ctx, "a", "missing"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if mc.Len() != 0 {
		t.Fatalf("want empty cache, got %d", mc.Len())
	}
}

func TestMemoryCache_LockTokens(t *testing.T) {
	mc := NewMemoryCache()
	defer mc.Close()
	ctx := context.Background()

	token, ok, _ := mc.TryLock(ctx, "lock", time.Minute)
	if !ok || token == "" {
		t.Fatal("first lock should succeed")
	}
	if _, ok, _ := mc.TryLock(ctx, "lock", time.Minute); ok {
		t.Fatal("second lock should fail")
	}
	if err := mc.Unlock(ctx, "lock", "someone-else"); !errors.Is(err, ErrLockNotHeld) {
		t.Fatalf("foreign token should not unlock, got %v", err)
	}
	if err := mc.Unlock(ctx, "lock", token); err != nil {
		t.Fatalf("unlock: %v", err)
	}
	if _, ok, _ := mc.TryLock(ctx, "lock", time.Minute); !ok {
		t.Fatal("lock after unlock should succeed")
	}
}

func TestMemoryCache_LockExpires(t *testing.T) {
	mc := NewMemoryCache()
	defer mc.Close()
	now := time.Unix(1000, 0)
	mc.now = func() time.Time { return now }
	ctx := context.Background()

	token, _, _ := mc.TryLock(ctx, "lock", time.Second)
	now = now.Add(2 * time.Second)
	if _, ok, _ := mc.TryLock(ctx, "lock", time.Second); !ok {
		t.Fatal("expired lease should be takeable")
	}
	if err := mc.Unlock(ctx, "lock", token); !errors.Is(err, ErrLockNotHeld) {
		t.Fatalf("stale token should not unlock, got %v", err)
	}
}

func TestKey(t *testing.T) {
	if got := Key("analysis", "lexical", int64(42), "abc"); got != "analysis:lexical:42:abc" {
		t.Fatalf("unexpected key %q", got)
	}
	if got := Key("news"); got != "news" {
		t.Fatalf("unexpected key %q", got)
	}
}
