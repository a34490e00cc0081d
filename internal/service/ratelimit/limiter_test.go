package ratelimit

import (
	"testing"
	"time"
)

type clock struct{ t time.Time }

func (c *clock) Now() time.Time          { return c.t }
func (c *clock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func TestLimiter_BurstThenRefill(t *testing.T) {
	clk := &clock{t: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	l := New(3, 1, WithClock(clk.Now))

	for i := 0; i < 3; i++ {
		if !l.Allow("1.2.3.4") {
			t.Fatalf("request %d should pass within burst", i)
		}
	}
	if l.Allow("1.2.3.4") {
		t.Fatal("fourth request should be limited")
	}
	if !l.Allow("5.6.7.8") {
		t.Fatal("other clients have their own bucket")
	}

	clk.Advance(time.Second)
	if !l.Allow("1.2.3.4") {
		t.Fatal("one token should refill after a second")
	}
	if l.Allow("1.2.3.4") {
		t.Fatal("only one token should have refilled")
	}
}

func TestLimiter_RefillCapsAtCapacity(t *testing.T) {
	clk := &clock{t: time.Unix(0, 0)}
	l := New(2, 10, WithClock(clk.Now))
	l.Allow("k")
	clk.Advance(time.Hour)

	passed := 0
	for i := 0; i < 5; i++ {
		if l.Allow("k") {
			passed++
		}
	}
	if passed != 2 {
		t.Fatalf("passed %d, want capacity 2", passed)
	}
}

func TestLimiter_PrunesIdleKeys(t *testing.T) {
	clk := &clock{t: time.Unix(0, 0)}
	l := New(2, 1, WithClock(clk.Now))
	l.Allow("a")
	l.Allow("b")
	if l.Len() != 2 {
		t.Fatalf("len = %d", l.Len())
	}
	clk.Advance(10 * time.Second)
	l.Allow("c")
	if l.Len() != 1 {
		t.Fatalf("idle keys not pruned, len = %d", l.Len())
	}
}
