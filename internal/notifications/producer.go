package notifications

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"festivaltickets/pkg/logger"

	"github.com/IBM/sarama"
)

// Publisher publishes domain events
type Publisher interface {
	Publish(ctx context.Context, event *DomainEvent) error
	Close() error
}

// KafkaProducerConfig contains configuration for the Kafka producer
type KafkaProducerConfig struct {
	Brokers          []string
	Topic            string
	ClientID         string
	RetryMax         int
	TimeoutMs        int
	RequiredAcks     sarama.RequiredAcks
	CompressionType  sarama.CompressionCodec
	IdempotentWrites bool
	MaxMessageBytes  int
}

// DefaultKafkaProducerConfig returns a default producer configuration
func DefaultKafkaProducerConfig() *KafkaProducerConfig {
	return &KafkaProducerConfig{
		Brokers:          []string{"localhost:9092"},
		Topic:            "festival-domain-events",
		ClientID:         "festival-tickets",
		RetryMax:         3,
		TimeoutMs:        10000,             // 10 seconds
		RequiredAcks:     sarama.WaitForAll, // Wait for all in-sync replicas
		CompressionType:  sarama.CompressionSnappy,
		IdempotentWrites: true,
		MaxMessageBytes:  1000000, // 1MB
	}
}

// KafkaPublisher publishes domain events to a Kafka topic
type KafkaPublisher struct {
	producer sarama.SyncProducer
	config   *KafkaProducerConfig
	log      *logger.Logger
}

// NewKafkaPublisher creates a publisher backed by a sarama sync producer
func NewKafkaPublisher(config *KafkaProducerConfig, log *logger.Logger) (*KafkaPublisher, error) {
	saramaConfig := sarama.NewConfig()
	saramaConfig.ClientID = config.ClientID

	// Producer configuration
	saramaConfig.Producer.Return.Successes = true
	saramaConfig.Producer.Return.Errors = true
	saramaConfig.Producer.RequiredAcks = config.RequiredAcks
	saramaConfig.Producer.Compression = config.CompressionType
	saramaConfig.Producer.Retry.Max = config.RetryMax
	saramaConfig.Producer.Timeout = time.Duration(config.TimeoutMs) * time.Millisecond
	saramaConfig.Producer.Idempotent = config.IdempotentWrites
	saramaConfig.Producer.MaxMessageBytes = config.MaxMessageBytes

	if config.IdempotentWrites {
		saramaConfig.Net.MaxOpenRequests = 1
	}

	// Hash partitioner keeps one aggregate's events ordered
	saramaConfig.Producer.Partitioner = sarama.NewHashPartitioner

	producer, err := sarama.NewSyncProducer(config.Brokers, saramaConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create Kafka producer: %w", err)
	}

	return NewKafkaPublisherWithProducer(producer, config, log), nil
}

// NewKafkaPublisherWithProducer wraps an existing producer
func NewKafkaPublisherWithProducer(producer sarama.SyncProducer, config *KafkaProducerConfig, log *logger.Logger) *KafkaPublisher {
	return &KafkaPublisher{
		producer: producer,
		config:   config,
		log:      log.WithComponent("kafka_publisher"),
	}
}

// Publish sends one domain event
func (p *KafkaPublisher) Publish(ctx context.Context, event *DomainEvent) error {
	messageBytes, err := event.ToJSON()
	if err != nil {
		return fmt.Errorf("failed to marshal domain event: %w", err)
	}

	message := &sarama.ProducerMessage{
		Topic:     p.config.Topic,
		Key:       sarama.StringEncoder(event.GetPartitionKey()),
		Value:     sarama.ByteEncoder(messageBytes),
		Headers:   p.createHeaders(event),
		Timestamp: event.OccurredAt,
	}

	partition, offset, err := p.producer.SendMessage(message)
	if err != nil {
		return fmt.Errorf("failed to send domain event to Kafka: %w", err)
	}

	p.log.DebugContext(ctx, "Domain event published",
		slog.String("topic", p.config.Topic),
		slog.Int("partition", int(partition)),
		slog.Int64("offset", offset),
		slog.String("type", string(event.Type)),
	)
	return nil
}

func (p *KafkaPublisher) createHeaders(event *DomainEvent) []sarama.RecordHeader {
	return []sarama.RecordHeader{
		{Key: []byte("event_id"), Value: []byte(event.ID.String())},
		{Key: []byte("event_type"), Value: []byte(event.Type)},
		{Key: []byte("aggregate_id"), Value: []byte(event.AggregateID.String())},
		{Key: []byte("producer"), Value: []byte(p.config.ClientID)},
		{Key: []byte("occurred_at"), Value: []byte(event.OccurredAt.Format(time.RFC3339))},
	}
}

// Close closes the underlying producer
func (p *KafkaPublisher) Close() error {
	if err := p.producer.Close(); err != nil {
		return fmt.Errorf("failed to close Kafka producer: %w", err)
	}
	return nil
}

// NoopPublisher drops every event. Used when Kafka is disabled.
type NoopPublisher struct{}

func (NoopPublisher) Publish(ctx context.Context, event *DomainEvent) error { return nil }

func (NoopPublisher) Close() error { return nil }

// PublishAsync publishes in the background so that request handlers do not
// wait on the broker. Failures are logged.
func PublishAsync(publisher Publisher, log *logger.Logger, event *DomainEvent) {
	if publisher == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := publisher.Publish(ctx, event); err != nil {
			log.Error("Failed to publish domain event",
				slog.String("type", string(event.Type)),
				slog.String("aggregate_id", event.AggregateID.String()),
				slog.Any("error", err),
			)
		}
	}()
}
