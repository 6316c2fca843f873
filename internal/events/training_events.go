package events

import (
	"time"

	"github.com/google/uuid"
)

// EventType represents the kinds of training lifecycle events
type EventType string

const (
	EventTrainingAssigned  EventType = "training.assigned"
	EventTrainingStarted   EventType = "training.started"
	EventTrainingCompleted EventType = "training.completed"
)

const (
	eventSource  = "training-service"
	eventVersion = "1.0"
)

// TrainingEvent is the envelope for every published event
type TrainingEvent struct {
	ID        string                 `json:"id"`
	Type      EventType              `json:"type"`
	Timestamp time.Time              `json:"timestamp"`
	Source    string                 `json:"source"`
	Version   string                 `json:"version"`
	Data      interface{}            `json:"data"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
}

// Event payloads

type TrainingAssignedEvent struct {
	UserID      uint      `json:"user_id"`
	TrainingIDs []uint    `json:"training_ids"`
	AssignedBy  uint      `json:"assigned_by"`
	AssignedAt  time.Time `json:"assigned_at"`
}

type TrainingStartedEvent struct {
	UserID        uint      `json:"user_id"`
	TrainingID    uint      `json:"training_id"`
	TrainingCode  string    `json:"training_code"`
	TrainingTitle string    `json:"training_title"`
	StartedAt     time.Time `json:"started_at"`
}

type TrainingCompletedEvent struct {
	UserID        uint      `json:"user_id"`
	TrainingID    uint      `json:"training_id"`
	TrainingCode  string    `json:"training_code"`
	TrainingTitle string    `json:"training_title"`
	StartedAt     time.Time `json:"started_at"`
	CompletedAt   time.Time `json:"completed_at"`
}

// Event factory functions

func NewTrainingAssignedEvent(userID uint, trainingIDs []uint, assignedBy uint, assignedAt time.Time) *TrainingEvent {
	return newEvent(EventTrainingAssigned, TrainingAssignedEvent{
		UserID:      userID,
		TrainingIDs: trainingIDs,
		AssignedBy:  assignedBy,
		AssignedAt:  assignedAt,
	})
}

func NewTrainingStartedEvent(userID, trainingID uint, code, title string, startedAt time.Time) *TrainingEvent {
	return newEvent(EventTrainingStarted, TrainingStartedEvent{
		UserID:        userID,
		TrainingID:    trainingID,
		TrainingCode:  code,
		TrainingTitle: title,
		StartedAt:     startedAt,
	})
}

func NewTrainingCompletedEvent(userID, trainingID uint, code, title string, startedAt, completedAt time.Time) *TrainingEvent {
	return newEvent(EventTrainingCompleted, TrainingCompletedEvent{
		UserID:        userID,
		TrainingID:    trainingID,
		TrainingCode:  code,
		TrainingTitle: title,
		StartedAt:     startedAt,
		CompletedAt:   completedAt,
	})
}

func newEvent(eventType EventType, data interface{}) *TrainingEvent {
	return &TrainingEvent{
		ID:        uuid.NewString(),
		Type:      eventType,
		Timestamp: time.Now().UTC(),
		Source:    eventSource,
		Version:   eventVersion,
		Data:      data,
	}
}
