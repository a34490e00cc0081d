package kafka

import (
	"time"

	"CrediScan/pkg/config"
)

type ProducerOption func(*ProducerConfig)

// ProducerConfig is the resolved writer setup. Zero values fall back to NewProducer defaults.
type ProducerConfig struct {
	Brokers      []string
	RequiredAcks int
	Compression  string
	MaxAttempts  int
	WriteTimeout time.Duration
	ReadTimeout  time.Duration
	BatchSize    int
	BatchBytes   int
	BatchTimeout time.Duration
	Async        bool
	HashByKey    bool
}

func WithBrokers(brokers ...string) ProducerOption {
	return func(c *ProducerConfig) { c.Brokers = brokers }
}

// WithDelivery sets acks (-1 waits for all replicas), writer attempts and the codec name.
func WithDelivery(acks, attempts int, compression string) ProducerOption {
	return func(c *ProducerConfig) {
		c.RequiredAcks = acks
		if attempts > 0 {
			c.MaxAttempts = attempts
		}
		if compression != "" {
			c.Compression = compression
		}
	}
}

// WithBatching flushes a batch at whichever of size, bytes or linger is reached first.
func WithBatching(size, bytes int, linger time.Duration) ProducerOption {
	return func(c *ProducerConfig) {
		if size > 0 {
			c.BatchSize = size
		}
		if bytes > 0 {
			c.BatchBytes = bytes
		}
		if linger > 0 {
			c.BatchTimeout = linger
		}
	}
}

func WithTimeouts(write, read time.Duration) ProducerOption {
	return func(c *ProducerConfig) {
		c.WriteTimeout = write
		c.ReadTimeout = read
	}
}

// WithAsync makes writes fire-and-forget; failures then only show up in metrics.
func WithAsync(async bool) ProducerOption {
	return func(c *ProducerConfig) { c.Async = async }
}

// WithKeyHashing routes equal keys to one partition.
func WithKeyHashing() ProducerOption {
	return func(c *ProducerConfig) { c.HashByKey = true }
}

// ProducerOptions maps the kafka section; keys are always hashed.
func ProducerOptions(cfg *config.Config) []ProducerOption {
	k := cfg.Kafka
	return []ProducerOption{
		WithBrokers(k.Brokers...),
		WithDelivery(k.RequiredAcks, k.Producer.MaxAttempts, k.Compression),
		WithBatching(k.Producer.BatchSize, k.Producer.BatchBytes, k.Producer.Linger),
		WithTimeouts(k.Producer.WriteTimeout, k.Producer.ReadTimeout),
		WithAsync(k.Producer.Async),
		WithKeyHashing(),
	}
}

type ConsumerOption func(*ConsumerConfig)

type ConsumerConfig struct {
	Brokers     []string
	GroupID     string
	WorkerCount int
	BufferSize  int
	RetryMax    int
	BackoffMin  time.Duration
	BackoffMax  time.Duration
	DLQTopic    string
	MinBytes    int
	MaxBytes    int
}

// WithGroup joins brokers as a member of groupID.
func WithGroup(groupID string, brokers ...string) ConsumerOption {
	return func(c *ConsumerConfig) {
		if groupID != "" {
			c.GroupID = groupID
		}
		c.Brokers = brokers
	}
}

// WithWorkers sets the handler goroutines and the channel buffer feeding them.
func WithWorkers(workers, buffer int) ConsumerOption {
	return func(c *ConsumerConfig) {
		if workers > 0 {
			c.WorkerCount = workers
		}
		if buffer > 0 {
			c.BufferSize = buffer
		}
	}
}

// WithRetry retries a failing handler max times with jittered backoff in [min, max].
func WithRetry(max int, min, maxBackoff time.Duration) ConsumerOption {
	return func(c *ConsumerConfig) {
		c.RetryMax = max
		c.BackoffMin = min
		c.BackoffMax = maxBackoff
	}
}

// WithDLQ forwards messages that exhausted their retries; empty disables it.
func WithDLQ(topic string) ConsumerOption {
	return func(c *ConsumerConfig) { c.DLQTopic = topic }
}

func WithFetch(minBytes, maxBytes int) ConsumerOption {
	return func(c *ConsumerConfig) {
		c.MinBytes = minBytes
		c.MaxBytes = maxBytes
	}
}

func ConsumerOptions(cfg *config.Config) []ConsumerOption {
	k := cfg.Kafka
	return []ConsumerOption{
		WithGroup(k.Consumer.GroupID, k.Brokers...),
		WithWorkers(k.Consumer.Workers, k.Consumer.BufferSize),
		WithRetry(k.Consumer.RetryMax, k.Consumer.BackoffMin, k.Consumer.BackoffMax),
		WithDLQ(k.Consumer.DLQTopic),
		WithFetch(k.Consumer.MinBytes, k.Consumer.MaxBytes),
	}
}
