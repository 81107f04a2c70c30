package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// Publisher delivers envelopes to downstream consumers
type Publisher interface {
	Publish(ctx context.Context, env Envelope) error
	Close() error
}

// NopPublisher drops every event. Used when no brokers are configured.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, Envelope) error { return nil }
func (NopPublisher) Close() error                            { return nil }

// Topics routes event types to kafka topics
type Topics struct {
	Customers string
	Orders    string
}

func (t Topics) For(eventType string) (string, error) {
	switch eventType {
	case EventCustomerCreated:
		return t.Customers, nil
	case EventOrderCreated:
		return t.Orders, nil
	default:
		return "", fmt.Errorf("no topic for event type %q", eventType)
	}
}

// messageWriter is the slice of *kafka.Writer the publisher needs
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher writes envelopes as JSON, keyed by correlation id
type KafkaPublisher struct {
	w      messageWriter
	topics Topics
	logger *zap.Logger
}

// NewKafkaPublisher creates an async writer. Delivery failures are logged.
func NewKafkaPublisher(brokers []string, topics Topics, logger *zap.Logger) *KafkaPublisher {
	w := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireAll,
		Async:                  true,
		AllowAutoTopicCreation: true,
		BatchTimeout:           50 * time.Millisecond,
		Completion: func(messages []kafka.Message, err error) {
			if err != nil {
				logger.Error("Failed to deliver events",
					zap.Error(err),
					zap.Int("count", len(messages)),
				)
			}
		},
	}

	return newKafkaPublisher(w, topics, logger)
}

func newKafkaPublisher(w messageWriter, topics Topics, logger *zap.Logger) *KafkaPublisher {
	return &KafkaPublisher{w: w, topics: topics, logger: logger}
}

func (p *KafkaPublisher) Publish(ctx context.Context, env Envelope) error {
	topic, err := p.topics.For(env.EventType)
	if err != nil {
		return err
	}

	value, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("encode envelope: %w", err)
	}

	msg := kafka.Message{
		Topic: topic,
		Key:   []byte(env.CorrelationID),
		Value: value,
		Time:  env.OccurredAt,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(env.EventType)},
		},
	}

	if err := p.w.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("publish %s: %w", env.EventType, err)
	}

	p.logger.Debug("Event published",
		zap.String("event_type", env.EventType),
		zap.String("topic", topic),
		zap.String("correlation_id", env.CorrelationID),
	)
	return nil
}

// Close flushes pending messages
func (p *KafkaPublisher) Close() error {
	return p.w.Close()
}

// New picks the kafka publisher when brokers are set and a no-op otherwise
func New(brokers []string, topics Topics, logger *zap.Logger) Publisher {
	if len(brokers) == 0 {
		logger.Info("No kafka brokers configured, domain events disabled")
		return NopPublisher{}
	}
	return NewKafkaPublisher(brokers, topics, logger)
}
