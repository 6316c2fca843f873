package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/SAP-F-2025/training-service/internal/events"
	"github.com/SAP-F-2025/training-service/internal/models"
)

// trainingEventService publishes lifecycle events after the owning
// transaction has committed. Publish failures are logged and swallowed.
type trainingEventService struct {
	eventPublisher events.EventPublisher
	logger         *slog.Logger
}

func NewTrainingEventService(eventPublisher events.EventPublisher, logger *slog.Logger) TrainingEventService {
	if eventPublisher == nil {
		eventPublisher = events.NewNoopEventPublisher(logger)
	}
	return &trainingEventService{
		eventPublisher: eventPublisher,
		logger:         logger,
	}
}

func (s *trainingEventService) PublishAssigned(ctx context.Context, userID uint, trainingIDs []uint, assignedBy uint) {
	if len(trainingIDs) == 0 {
		return
	}
	s.logger.Info("Publishing training assigned event",
		"user_id", userID,
		"training_count", len(trainingIDs))

	s.publish(ctx, events.NewTrainingAssignedEvent(userID, trainingIDs, assignedBy, time.Now()))
}

func (s *trainingEventService) PublishStarted(ctx context.Context, assignment *models.UserTraining) {
	if assignment == nil || assignment.StartedAt == nil {
		return
	}
	s.logger.Info("Publishing training started event",
		"user_id", assignment.UserID,
		"training_id", assignment.TrainingID)

	s.publish(ctx, events.NewTrainingStartedEvent(
		assignment.UserID,
		assignment.TrainingID,
		assignment.Training.Code,
		assignment.Training.Title,
		*assignment.StartedAt,
	))
}

func (s *trainingEventService) PublishCompleted(ctx context.Context, assignment *models.UserTraining) {
	if assignment == nil || assignment.StartedAt == nil || assignment.CompletedAt == nil {
		return
	}
	s.logger.Info("Publishing training completed event",
		"user_id", assignment.UserID,
		"training_id", assignment.TrainingID)

	s.publish(ctx, events.NewTrainingCompletedEvent(
		assignment.UserID,
		assignment.TrainingID,
		assignment.Training.Code,
		assignment.Training.Title,
		*assignment.StartedAt,
		*assignment.CompletedAt,
	))
}

func (s *trainingEventService) publish(ctx context.Context, event *events.TrainingEvent) {
	if err := s.eventPublisher.PublishTrainingEvent(ctx, event); err != nil {
		s.logger.Error("Failed to publish training event",
			"event_id", event.ID,
			"event_type", event.Type,
			"error", err)
	}
}
