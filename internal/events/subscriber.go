package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-kafka/v2/pkg/kafka"
	"github.com/ThreeDotsLabs/watermill/message"
)

// SubscriberConfig holds configuration for consuming training events
type SubscriberConfig struct {
	KafkaBrokers  []string
	TopicName     string
	ConsumerGroup string
	Logger        *slog.Logger
}

// EventHandler processes one decoded event. Returning an error nacks the
// message so the broker redelivers it.
type EventHandler func(ctx context.Context, event *TrainingEvent) error

// Consume subscribes to the training topic and feeds every message to handle
// until ctx is cancelled.
func Consume(ctx context.Context, config SubscriberConfig, handle EventHandler) error {
	subscriber, err := kafka.NewSubscriber(kafka.SubscriberConfig{
		Brokers:       config.KafkaBrokers,
		Unmarshaler:   kafka.DefaultMarshaler{},
		ConsumerGroup: config.ConsumerGroup,
	}, watermill.NewSlogLogger(config.Logger))
	if err != nil {
		return fmt.Errorf("failed to create Kafka subscriber: %w", err)
	}
	defer subscriber.Close()

	return ConsumeFrom(ctx, subscriber, config.TopicName, config.Logger, handle)
}

// ConsumeFrom drains topic on any Watermill subscriber until the message
// channel closes.
func ConsumeFrom(ctx context.Context, subscriber message.Subscriber, topic string, logger *slog.Logger, handle EventHandler) error {
	messages, err := subscriber.Subscribe(ctx, topic)
	if err != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", topic, err)
	}

	for msg := range messages {
		event, err := DecodeMessage(msg)
		if err != nil {
			// Redelivering a message that cannot be decoded would loop forever.
			logger.Error("Dropping undecodable training event", "message_id", msg.UUID, "error", err)
			msg.Ack()
			continue
		}
		if err := handle(msg.Context(), event); err != nil {
			logger.Warn("Training event handler failed", "event_id", event.ID, "error", err)
			msg.Nack()
			continue
		}
		msg.Ack()
	}
	return nil
}

// DecodeMessage reverses NewMessage, restoring the typed payload for known
// event types.
func DecodeMessage(msg *message.Message) (*TrainingEvent, error) {
	var envelope struct {
		TrainingEvent
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(msg.Payload, &envelope); err != nil {
		return nil, fmt.Errorf("failed to unmarshal training event: %w", err)
	}

	event := envelope.TrainingEvent
	var err error
	switch event.Type {
	case EventTrainingAssigned:
		var data TrainingAssignedEvent
		err = json.Unmarshal(envelope.Data, &data)
		event.Data = data
	case EventTrainingStarted:
		var data TrainingStartedEvent
		err = json.Unmarshal(envelope.Data, &data)
		event.Data = data
	case EventTrainingCompleted:
		var data TrainingCompletedEvent
		err = json.Unmarshal(envelope.Data, &data)
		event.Data = data
	default:
		return nil, fmt.Errorf("unknown event type %q", event.Type)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal %s payload: %w", event.Type, err)
	}
	return &event, nil
}
