package kafka

import (
	"testing"
	"time"

	"CrediScan/pkg/config"
)

func TestProducerOptions(t *testing.T) {
	cfg := config.Default()
	cfg.Kafka.Brokers = []string{"k1:9092", "k2:9092"}
	cfg.Kafka.Producer.BatchSize = 0

	pc := &ProducerConfig{BatchSize: 7}
	for _, o := range ProducerOptions(cfg) {
		o(pc)
	}
	if len(pc.Brokers) != 2 || !pc.HashByKey {
		t.Fatalf("unexpected producer config %+v", pc)
	}
	if pc.BatchSize != 7 {
		t.Fatalf("zero batch size should keep the default, got %d", pc.BatchSize)
	}
	if pc.RequiredAcks != -1 || pc.Compression != "gzip" || pc.BatchTimeout != 200*time.Millisecond {
		t.Fatalf("config values not applied: %+v", pc)
	}
}

func TestConsumerOptions_KeepsDefaultGroup(t *testing.T) {
	cfg := config.Default()
	cfg.Kafka.Brokers = []string{"k1:9092"}
	cfg.Kafka.Consumer.GroupID = ""
	cfg.Kafka.Consumer.DLQTopic = "analysis.dlq"

	cc := &ConsumerConfig{GroupID: "default"}
	for _, o := range ConsumerOptions(cfg) {
		o(cc)
	}
	if cc.GroupID != "default" || cc.DLQTopic != "analysis.dlq" || cc.WorkerCount != 2 {
		t.Fatalf("unexpected consumer config %+v", cc)
	}
}
