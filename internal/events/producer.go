// Package events publishes domain events to Kafka. Publishing is always
// best effort: callers log a failed publish and carry on, it never fails
// the request that produced the event.
package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/segmentio/kafka-go"
)

const (
	TopicUserEvents    = "user_events"
	TopicCartEvents    = "cart_events"
	TopicProductEvents = "product_events"
)

type Publisher interface {
	Publish(ctx context.Context, topic, key string, event map[string]any) error
	Close() error
}

type Producer struct {
	writer *kafka.Writer
}

func NewProducer(brokers []string) *Producer {
	return &Producer{
		writer: &kafka.Writer{
			Addr:                   kafka.TCP(brokers...),
			Balancer:               &kafka.LeastBytes{},
			AllowAutoTopicCreation: true,
		},
	}
}

func (p *Producer) Publish(ctx context.Context, topic, key string, event map[string]any) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("kafka: json.Marshal failed: %w", err)
	}
	msg := kafka.Message{
		Topic: topic,
		Key:   []byte(key),
		Value: data,
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("kafka: write failed: %w", err)
	}
	return nil
}

func (p *Producer) Close() error {
	return p.writer.Close()
}

// Nop is used where no broker is configured and in tests.
type Nop struct{}

func (Nop) Publish(context.Context, string, string, map[string]any) error { return nil }
func (Nop) Close() error                                                  { return nil }
