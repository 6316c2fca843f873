package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-kafka/v2/pkg/kafka"
	"github.com/ThreeDotsLabs/watermill/message"
)

// EventPublisher sends training lifecycle events to downstream consumers.
type EventPublisher interface {
	PublishTrainingEvent(ctx context.Context, event *TrainingEvent) error
	Close() error
}

// TopicPublisher writes every event to one topic of a Watermill publisher.
type TopicPublisher struct {
	pub    message.Publisher
	topic  string
	logger *slog.Logger
}

func NewTopicPublisher(pub message.Publisher, topic string, logger *slog.Logger) *TopicPublisher {
	return &TopicPublisher{pub: pub, topic: topic, logger: logger}
}

type PublisherConfig struct {
	KafkaBrokers []string
	TopicName    string
	Logger       *slog.Logger
}

// NewKafkaEventPublisher connects a TopicPublisher to Kafka.
func NewKafkaEventPublisher(cfg PublisherConfig) (*TopicPublisher, error) {
	pub, err := kafka.NewPublisher(kafka.PublisherConfig{
		Brokers:   cfg.KafkaBrokers,
		Marshaler: kafka.DefaultMarshaler{},
	}, watermill.NewSlogLogger(cfg.Logger))
	if err != nil {
		return nil, fmt.Errorf("failed to create Kafka publisher: %w", err)
	}
	return NewTopicPublisher(pub, cfg.TopicName, cfg.Logger), nil
}

// NewMessage encodes an event as a Watermill message whose UUID is the
// event id.
func NewMessage(ctx context.Context, event *TrainingEvent) (*message.Message, error) {
	body, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal training event: %w", err)
	}

	msg := message.NewMessage(event.ID, body)
	msg.SetContext(ctx)
	for k, v := range map[string]string{
		"event_type": string(event.Type),
		"source":     event.Source,
		"version":    event.Version,
		"timestamp":  event.Timestamp.Format(time.RFC3339),
	} {
		msg.Metadata.Set(k, v)
	}
	return msg, nil
}

func (p *TopicPublisher) PublishTrainingEvent(ctx context.Context, event *TrainingEvent) error {
	msg, err := NewMessage(ctx, event)
	if err != nil {
		return err
	}

	log := p.logger.With("event_id", event.ID, "event_type", event.Type, "topic", p.topic)
	if err := p.pub.Publish(p.topic, msg); err != nil {
		log.Error("Failed to publish training event", "error", err)
		return fmt.Errorf("failed to publish training event: %w", err)
	}
	log.Info("Published training event")
	return nil
}

func (p *TopicPublisher) Close() error {
	return p.pub.Close()
}

// NoopEventPublisher drops events. Used when publishing is disabled.
type NoopEventPublisher struct {
	logger *slog.Logger
}

func NewNoopEventPublisher(logger *slog.Logger) *NoopEventPublisher {
	return &NoopEventPublisher{logger: logger}
}

func (n *NoopEventPublisher) PublishTrainingEvent(_ context.Context, event *TrainingEvent) error {
	n.logger.Debug("Event publishing disabled, dropping event", "event_id", event.ID, "event_type", event.Type)
	return nil
}

func (n *NoopEventPublisher) Close() error { return nil }

// MockEventPublisher records events in memory.
type MockEventPublisher struct {
	mu     sync.Mutex
	events []TrainingEvent
	logger *slog.Logger

	// Err fails every publish while set.
	Err error
}

func NewMockEventPublisher(logger *slog.Logger) *MockEventPublisher {
	return &MockEventPublisher{logger: logger}
}

func (m *MockEventPublisher) PublishTrainingEvent(_ context.Context, event *TrainingEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.Err != nil {
		return m.Err
	}
	m.events = append(m.events, *event)
	m.logger.Debug("Recorded training event", "event_id", event.ID, "event_type", event.Type)
	return nil
}

func (m *MockEventPublisher) Close() error { return nil }

// GetPublishedEvents returns a snapshot of the recorded events.
func (m *MockEventPublisher) GetPublishedEvents() []TrainingEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]TrainingEvent(nil), m.events...)
}

func (m *MockEventPublisher) ClearEvents() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = nil
}
