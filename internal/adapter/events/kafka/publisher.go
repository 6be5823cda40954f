package kafka

import (
	"context"
	"encoding/json"
	"fmt"

	"wallet-ledger/config"
	"wallet-ledger/internal/core/domain"

	"github.com/segmentio/kafka-go"
)

// EventTypeHeader names the event carried by a message.
const EventTypeHeader = "event_type"

// MessageWriter is the part of *kafka.Writer the publisher needs.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Publisher implements ports.SettlementPublisher on a Kafka topic.
// Messages are keyed by transaction id so a transaction's events stay ordered within a partition.
type Publisher struct {
	writer MessageWriter
}

// NewPublisher creates a Publisher writing to cfg.Topic.
func NewPublisher(cfg config.KafkaConfig) *Publisher {
	return NewPublisherWithWriter(&kafka.Writer{
		Addr:                   kafka.TCP(cfg.Brokers...),
		Topic:                  cfg.Topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireAll,
		AllowAutoTopicCreation: true,
	})
}

// NewPublisherWithWriter wraps an existing writer.
func NewPublisherWithWriter(w MessageWriter) *Publisher {
	return &Publisher{writer: w}
}

// Publish writes a settlement event.
func (p *Publisher) Publish(ctx context.Context, event domain.SettlementEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal settlement event: %w", err)
	}

	err = p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(event.TransactionID.String()),
		Value: data,
		Time:  event.OccurredAt,
		Headers: []kafka.Header{
			{Key: EventTypeHeader, Value: []byte("transaction." + string(event.Status))},
		},
	})
	if err != nil {
		return fmt.Errorf("publish settlement event: %w", err)
	}
	return nil
}

// Close flushes pending writes.
func (p *Publisher) Close() error {
	return p.writer.Close()
}
