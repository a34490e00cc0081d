package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"CrediScan/internal/domain/models"
)

type memAnalysisStore struct {
	mu   sync.Mutex
	rows []*models.AnalysisResult
	err  error
}

func (s *memAnalysisStore) Init(context.Context) error { return nil }
func (s *memAnalysisStore) Store(_ context.Context, r *models.AnalysisResult) error {
	if s.err != nil {
		return s.err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows = append(s.rows, r)
	return nil
}
func (s *memAnalysisStore) StoreBatch(ctx context.Context, rs []*models.AnalysisResult) error {
	for _, r := range rs {
		if err := s.Store(ctx, r); err != nil {
			return err
		}
	}
	return nil
}
func (s *memAnalysisStore) Recent(context.Context, time.Time, int) ([]models.HistoryEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.HistoryEntry, 0, len(s.rows))
	for _, r := range s.rows {
		out = append(out, models.HistoryEntry{ID: r.ID, VerdictLevel: r.VerdictLevel})
	}
	return out, nil
}
func (s *memAnalysisStore) Health(context.Context) error { return nil }
func (s *memAnalysisStore) Close() error                 { return nil }

type countingMetrics struct {
	mu     sync.Mutex
	errors map[string]int
}

func (m *countingMetrics) RecordError(kind string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.errors == nil {
		m.errors = map[string]int{}
	}
	m.errors[kind]++
}
func (m *countingMetrics) RecordLatency(string, float64)     {}
func (m *countingMetrics) RecordVerdict(string, bool)        {}
func (m *countingMetrics) RecordFeedFetch(string, bool, int) {}
func (m *countingMetrics) RecordSnapshotAge(float64)         {}
func (m *countingMetrics) RecordPrediction(string, string)   {}
func (m *countingMetrics) SetModelAvailable(string, bool)    {}

func TestKafkaAnalysisHandler_StoresEvent(t *testing.T) {
	store := &memAnalysisStore{}
	h := NewKafkaAnalysisHandler("analysis.completed", store, &countingMetrics{})
	if h.Topic() != "analysis.completed" {
		t.Fatalf("topic = %q", h.Topic())
	}

	b, _ := json.Marshal(&models.AnalysisResult{ID: "a1", VerdictLevel: models.VerdictHigh, AnalyzedAt: time.Now()})
	if err := h.Handle(context.Background(), b); err != nil {
		t.Fatalf("handle: %v", err)
	}
	if len(store.rows) != 1 || store.rows[0].ID != "a1" || store.rows[0].VerdictLevel != models.VerdictHigh {
		t.Fatalf("unexpected rows %+v", store.rows)
	}
}

func TestKafkaAnalysisHandler_RejectsMalformed(t *testing.T) {
	m := &countingMetrics{}
	h := NewKafkaAnalysisHandler("t", &memAnalysisStore{}, m)

	if err := h.Handle(context.Background(), []byte("{not json")); err == nil {
		t.Fatal("expected decode error")
	}
	if err := h.Handle(context.Background(), []byte(`{"risk_score": 10}`)); err == nil {
		t.Fatal("expected error for event without id")
	}
	if m.errors["consumer_unmarshal"] != 1 || m.errors["consumer_invalid"] != 1 {
		t.Fatalf("unexpected error counts %v", m.errors)
	}
}

func TestKafkaAnalysisHandler_StoreFailure(t *testing.T) {
	boom := errors.New("clickhouse down")
	m := &countingMetrics{}
	h := NewKafkaAnalysisHandler("t", &memAnalysisStore{err: boom}, m)

	err := h.Handle(context.Background(), []byte(`{"id":"x"}`))
	if !errors.Is(err, boom) {
		t.Fatalf("want %v, got %v", boom, err)
	}
	if m.errors["consumer_store"] != 1 {
		t.Fatalf("store failure not counted: %v", m.errors)
	}
}
