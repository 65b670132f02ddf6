package event

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/IBM/sarama"
	"github.com/aquaportal/backend/internal/domain/shared"
	"github.com/aquaportal/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

// KafkaPublisher forwards every domain event to one Kafka topic. Messages
// are keyed by customer so a customer's events land on one partition in
// order.
type KafkaPublisher struct {
	producer sarama.SyncProducer
	topic    string
	logger   *zap.Logger
}

// NewKafkaPublisher wraps an existing producer
func NewKafkaPublisher(producer sarama.SyncProducer, topic string, logger *zap.Logger) *KafkaPublisher {
	return &KafkaPublisher{
		producer: producer,
		topic:    topic,
		logger:   logger.Named("kafka"),
	}
}

// NewSyncProducer builds a sarama producer from configuration
func NewSyncProducer(cfg config.KafkaConfig) (sarama.SyncProducer, error) {
	saramaConfig, err := newSaramaConfig(cfg)
	if err != nil {
		return nil, err
	}
	producer, err := sarama.NewSyncProducer(cfg.Brokers, saramaConfig)
	if err != nil {
		return nil, fmt.Errorf("error creating Kafka producer: %w", err)
	}
	return producer, nil
}

func newSaramaConfig(cfg config.KafkaConfig) (*sarama.Config, error) {
	acks, err := parseRequiredAcks(cfg.RequiredAcks)
	if err != nil {
		return nil, err
	}

	saramaConfig := sarama.NewConfig()
	saramaConfig.ClientID = cfg.ClientID
	saramaConfig.Producer.RequiredAcks = acks
	saramaConfig.Producer.Retry.Max = cfg.RetryMax
	saramaConfig.Producer.Retry.Backoff = 250 * time.Millisecond
	saramaConfig.Producer.Compression = sarama.CompressionSnappy
	saramaConfig.Producer.Idempotent = acks == sarama.WaitForAll
	if saramaConfig.Producer.Idempotent {
		saramaConfig.Net.MaxOpenRequests = 1
		saramaConfig.Version = sarama.V2_1_0_0
	}
	// SyncProducer requires both channels.
	saramaConfig.Producer.Return.Successes = true
	saramaConfig.Producer.Return.Errors = true
	return saramaConfig, nil
}

func parseRequiredAcks(v string) (sarama.RequiredAcks, error) {
	switch strings.ToLower(v) {
	case "none", "no_response":
		return sarama.NoResponse, nil
	case "leader", "local", "wait_for_local", "1":
		return sarama.WaitForLocal, nil
	case "", "all", "wait_for_all", "-1":
		return sarama.WaitForAll, nil
	default:
		return sarama.WaitForAll, fmt.Errorf("invalid kafka requiredAcks: %s", v)
	}
}

// Handle implements shared.EventHandler
func (p *KafkaPublisher) Handle(ctx context.Context, event shared.DomainEvent) error {
	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to encode %s event: %w", event.EventType(), err)
	}

	msg := &sarama.ProducerMessage{
		Topic: p.topic,
		Key:   sarama.StringEncoder(event.CustomerID().String()),
		Value: sarama.ByteEncoder(value),
		Headers: []sarama.RecordHeader{
			{Key: []byte("event_type"), Value: []byte(event.EventType())},
			{Key: []byte("event_id"), Value: []byte(event.EventID().String())},
			{Key: []byte("aggregate_type"), Value: []byte(event.AggregateType())},
		},
		Timestamp: event.OccurredAt(),
	}

	partition, offset, err := p.producer.SendMessage(msg)
	if err != nil {
		return fmt.Errorf("failed to publish %s event: %w", event.EventType(), err)
	}
	p.logger.Debug("event published",
		zap.String("event_type", event.EventType()),
		zap.String("event_id", event.EventID().String()),
		zap.Int32("partition", partition),
		zap.Int64("offset", offset),
	)
	return nil
}

// EventTypes returns nil so the publisher receives every event
func (p *KafkaPublisher) EventTypes() []string {
	return nil
}

// Close flushes and closes the producer
func (p *KafkaPublisher) Close() error {
	return p.producer.Close()
}

var _ shared.EventHandler = (*KafkaPublisher)(nil)
