// Package kafka publishes important traffic events observed by the live
// watch to a Kafka topic for downstream fleet consumers.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/landigf/MinervaS/internal/domain"
)

// Publisher produces one message per important event. It is safe for use
// from the watch goroutine.
type Publisher struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewPublisher creates a producer for the given brokers and topic.
func NewPublisher(brokers []string, topic string, logger *slog.Logger) *Publisher {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafkago.LeastBytes{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &Publisher{writer: w, logger: logger}
}

// Publish serializes and writes one event. Publish failures are logged and
// swallowed: losing a notification must never stall the watch loop.
func (p *Publisher) Publish(ctx context.Context, e domain.Event) {
	msg, err := serializeEvent(e)
	if err != nil {
		p.logger.Error("serialize event for publish", "error", err)
		return
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.logger.Error("publish important event", "error", err, "category", e.Category)
	}
}

// Close flushes and closes the underlying writer.
func (p *Publisher) Close() error {
	return p.writer.Close()
}

// serializeEvent marshals an event into a Kafka message keyed by category,
// so consumers partition per category.
func serializeEvent(e domain.Event) (kafkago.Message, error) {
	data, err := json.Marshal(e)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize event: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(e.Category),
		Value: data,
		Time:  e.Timestamp,
		Headers: []kafkago.Header{
			{Key: "content-type", Value: []byte("application/json")},
		},
	}, nil
}
