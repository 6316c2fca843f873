// Command event-consumer tails the training lifecycle topic and logs every
// event it receives.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/SAP-F-2025/training-service/internal/config"
	"github.com/SAP-F-2025/training-service/internal/events"
	"github.com/SAP-F-2025/training-service/internal/utils"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	logger := utils.NewBaseLogger(os.Stdout, cfg.IsProduction())

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info("Consuming training events",
		"brokers", cfg.Events.KafkaBrokers,
		"topic", cfg.Events.TrainingTopic,
		"group", cfg.Events.ConsumerGroup)

	err = events.Consume(ctx, events.SubscriberConfig{
		KafkaBrokers:  cfg.Events.GetKafkaBrokers(),
		TopicName:     cfg.Events.TrainingTopic,
		ConsumerGroup: cfg.Events.ConsumerGroup,
		Logger:        logger,
	}, func(ctx context.Context, event *events.TrainingEvent) error {
		logger.Info("Training event",
			"event_id", event.ID,
			"event_type", event.Type,
			"timestamp", event.Timestamp,
			"data", event.Data)
		return nil
	})
	if err != nil {
		logger.Error("consumer stopped", "error", err)
		os.Exit(1)
	}
}
