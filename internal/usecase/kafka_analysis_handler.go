package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"CrediScan/internal/domain/models"
	domrepo "CrediScan/internal/domain/repository"
	pkgkafka "CrediScan/pkg/kafka"
)

// KafkaAnalysisHandler persists analysis events published by API replicas.
type KafkaAnalysisHandler struct {
	topic   string
	store   domrepo.AnalysisStore
	metrics domrepo.Metrics
	now     func() time.Time
}

func NewKafkaAnalysisHandler(topic string, store domrepo.AnalysisStore, metrics domrepo.Metrics) *KafkaAnalysisHandler {
	return &KafkaAnalysisHandler{topic: topic, store: store, metrics: metrics, now: time.Now}
}

func (h *KafkaAnalysisHandler) Topic() string { return h.topic }

// Handle stores one AnalysisResult event. Malformed events are returned as errors
// so the consumer can route them to its DLQ.
func (h *KafkaAnalysisHandler) Handle(ctx context.Context, b []byte) error {
	var r models.AnalysisResult
	if err := json.Unmarshal(b, &r); err != nil {
		h.recordError("consumer_unmarshal")
		return fmt.Errorf("decode analysis event: %w", err)
	}
	if r.ID == "" {
		h.recordError("consumer_invalid")
		return fmt.Errorf("analysis event without id")
	}
	if h.metrics != nil && !r.AnalyzedAt.IsZero() {
		h.metrics.RecordLatency("history_e2e", h.now().Sub(r.AnalyzedAt).Seconds())
	}

	start := h.now()
	err := h.store.Store(ctx, &r)
	if h.metrics != nil {
		h.metrics.RecordLatency("history_insert", h.now().Sub(start).Seconds())
	}
	if err != nil {
		h.recordError("consumer_store")
		return err
	}
	return nil
}

func (h *KafkaAnalysisHandler) recordError(kind string) {
	if h.metrics != nil {
		h.metrics.RecordError(kind)
	}
}

var _ pkgkafka.MessageHandler = (*KafkaAnalysisHandler)(nil)
