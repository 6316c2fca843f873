package services

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/SAP-F-2025/training-service/internal/events"
	"github.com/SAP-F-2025/training-service/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTrainingEventService_PublishFailureIsSwallowed(t *testing.T) {
	mock := events.NewMockEventPublisher(slog.Default())
	mock.Err = errors.New("broker unavailable")
	svc := NewTrainingEventService(mock, slog.Default())

	assert.NotPanics(t, func() {
		svc.PublishAssigned(context.Background(), 1, []uint{2, 3}, 9)
	})
	assert.Empty(t, mock.GetPublishedEvents())
}

func TestTrainingEventService_SkipsIncompleteAssignments(t *testing.T) {
	mock := events.NewMockEventPublisher(slog.Default())
	svc := NewTrainingEventService(mock, slog.Default())
	ctx := context.Background()

	svc.PublishAssigned(ctx, 1, nil, 9)
	svc.PublishStarted(ctx, &models.UserTraining{UserID: 1, TrainingID: 2})
	svc.PublishCompleted(ctx, nil)
	assert.Empty(t, mock.GetPublishedEvents())

	started := time.Now().Add(-time.Hour)
	completed := time.Now()
	svc.PublishCompleted(ctx, &models.UserTraining{
		UserID:      1,
		TrainingID:  2,
		Training:    models.Training{Code: "CS101", Title: "Intro to Computing"},
		StartedAt:   &started,
		CompletedAt: &completed,
	})

	published := mock.GetPublishedEvents()
	require.Len(t, published, 1)
	data, ok := published[0].Data.(events.TrainingCompletedEvent)
	require.True(t, ok)
	assert.Equal(t, "Intro to Computing", data.TrainingTitle)
	assert.Equal(t, completed, data.CompletedAt)
}

func TestNewTrainingEventService_NilPublisherIsNoop(t *testing.T) {
	svc := NewTrainingEventService(nil, slog.Default())
	assert.NotPanics(t, func() {
		svc.PublishAssigned(context.Background(), 1, []uint{2}, 9)
	})
}
