package logger

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

type capturePublisher struct {
	mu      sync.Mutex
	topic   string
	batches [][]AggregatedLogEntry
}

func (p *capturePublisher) PublishMessage(_ context.Context, topic string, payload interface{}) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.topic = topic
	p.batches = append(p.batches, payload.([]AggregatedLogEntry))
	return nil
}

func (p *capturePublisher) entries() []AggregatedLogEntry {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []AggregatedLogEntry
	for _, b := range p.batches {
		out = append(out, b...)
	}
	return out
}

func TestCollectorDeduplicatesAndFlushesOnRemove(t *testing.T) {
	pub := &capturePublisher{}
	l := Nop()
	l.AddCollector(&CollectionConfig{TimeInterval: time.Hour, CountThreshold: 100, Topic: "logs", Publisher: pub})

	for i := 0; i < 3; i++ {
		l.Error("store failed", String("table", "analyses"), Error(errors.New("boom")))
	}
	l.Warn("not collected")
	l.RemoveCollector()

	got := pub.entries()
	if len(got) != 1 {
		t.Fatalf("expected 1 aggregated entry, got %d", len(got))
	}
	if got[0].Count != 3 || got[0].Message != "store failed" || got[0].Level != "error" {
		t.Fatalf("unexpected entry %+v", got[0])
	}
	if got[0].Fields["error"] != "boom" {
		t.Fatalf("error field not flattened: %v", got[0].Fields)
	}
	if pub.topic != "logs" {
		t.Fatalf("unexpected topic %q", pub.topic)
	}
}

func TestCollectorSeesChildLoggersCreatedEarlier(t *testing.T) {
	pub := &capturePublisher{}
	root := Nop()
	child := root.With(String("component", "kafka"))

	root.AddCollector(&CollectionConfig{TimeInterval: time.Hour, Publisher: pub})
	child.Error("consumer stopped")
	root.RemoveCollector()

	if got := pub.entries(); len(got) != 1 || got[0].Message != "consumer stopped" {
		t.Fatalf("child error not collected: %+v", got)
	}
}

func TestCollectorThresholdFlushesEarly(t *testing.T) {
	pub := &capturePublisher{}
	c := NewLogCollector(&CollectionConfig{TimeInterval: time.Hour, CountThreshold: 2, Publisher: pub})
	defer c.Close()

	c.AddLog("error", "a", nil, "x.go:1")
	c.AddLog("error", "b", nil, "x.go:2")

	deadline := time.Now().Add(2 * time.Second)
	for len(pub.entries()) < 2 {
		if time.Now().After(deadline) {
			t.Fatalf("threshold flush did not happen")
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestNewRejectsBadLevel(t *testing.T) {
	if _, err := New(&Config{Level: "loud"}); err == nil {
		t.Fatalf("expected error for unknown level")
	}
}

func TestStringsAndDurationFields(t *testing.T) {
	if _, v := Strings("labels", []string{"fake", "real"}).GetKeyValue(); v != "fake, real" {
		t.Fatalf("unexpected strings value %v", v)
	}
	if _, v := Duration("took", 1500*time.Millisecond).GetKeyValue(); v != int64(1500) {
		t.Fatalf("unexpected duration value %v", v)
	}
}
