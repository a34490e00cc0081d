package repository

import (
	"context"

	"CrediScan/internal/domain/models"
	domrepo "CrediScan/internal/domain/repository"
	"CrediScan/pkg/kafka"
)

// EventAnalysisCompleted is the event-type header of published analyses.
const EventAnalysisCompleted = "analysis.completed"

type messagePublisher interface {
	Publish(ctx context.Context, topic string, key []byte, value interface{}, headers ...map[string]string) error
	Close() error
}

// KafkaAnalysisPublisher emits completed analyses as JSON events keyed by text hash,
// so repeated analyses of one text land on the same partition.
type KafkaAnalysisPublisher struct {
	producer messagePublisher
	topic    string
}

var _ domrepo.AnalysisPublisher = (*KafkaAnalysisPublisher)(nil)

func NewKafkaAnalysisPublisher(producer messagePublisher, topic string) *KafkaAnalysisPublisher {
	return &KafkaAnalysisPublisher{producer: producer, topic: topic}
}

func (p *KafkaAnalysisPublisher) Publish(ctx context.Context, r *models.AnalysisResult) error {
	return p.producer.Publish(ctx, p.topic, []byte(r.TextHash), r, map[string]string{
		kafka.HeaderEventType: EventAnalysisCompleted,
		"verdict":             string(r.VerdictLevel),
	})
}

func (p *KafkaAnalysisPublisher) Close() error {
	if p.producer != nil {
		return p.producer.Close()
	}
	return nil
}
