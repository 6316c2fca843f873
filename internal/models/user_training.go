package models

import (
	"database/sql/driver"
	"fmt"
	"time"
)

type TrainingStatus string

const (
	StatusNotStarted TrainingStatus = "not_started"
	StatusInProgress TrainingStatus = "in_progress"
	StatusCompleted  TrainingStatus = "completed"
)

var TrainingStatuses = []TrainingStatus{StatusNotStarted, StatusInProgress, StatusCompleted}

func ParseTrainingStatus(s string) (TrainingStatus, error) {
	status := TrainingStatus(s)
	if !status.Valid() {
		return "", fmt.Errorf("invalid training status %q", s)
	}
	return status, nil
}

func (s TrainingStatus) Valid() bool {
	switch s {
	case StatusNotStarted, StatusInProgress, StatusCompleted:
		return true
	}
	return false
}

func (s TrainingStatus) Value() (driver.Value, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("invalid training status %q", string(s))
	}
	return string(s), nil
}

func (s *TrainingStatus) Scan(value interface{}) error {
	var raw string
	switch v := value.(type) {
	case string:
		raw = v
	case []byte:
		raw = string(v)
	default:
		return fmt.Errorf("cannot scan %T into TrainingStatus", value)
	}
	status, err := ParseTrainingStatus(raw)
	if err != nil {
		return err
	}
	*s = status
	return nil
}

// UserTraining assigns a training to a user. Status only moves
// not_started -> in_progress -> completed.
type UserTraining struct {
	ID          uint           `json:"id" gorm:"primaryKey"`
	UserID      uint           `json:"user_id" gorm:"not null;uniqueIndex:idx_user_training"`
	TrainingID  uint           `json:"training_id" gorm:"not null;uniqueIndex:idx_user_training;index"`
	Status      TrainingStatus `json:"status" gorm:"type:varchar(20);not null;default:not_started;index"`
	StartedAt   *time.Time     `json:"started_at"`
	CompletedAt *time.Time     `json:"completed_at"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`

	// Relations
	User     User     `json:"user,omitempty" gorm:"foreignKey:UserID"`
	Training Training `json:"training,omitempty" gorm:"foreignKey:TrainingID"`
}

func (UserTraining) TableName() string {
	return "user_trainings"
}

// NewAssignment builds a not-started assignment. StartedAt is stamped with the
// assignment time and overwritten when the user actually starts.
func NewAssignment(userID, trainingID uint, now time.Time) *UserTraining {
	return &UserTraining{
		UserID:     userID,
		TrainingID: trainingID,
		Status:     StatusNotStarted,
		StartedAt:  &now,
	}
}

// Start moves a not-started assignment to in_progress. It reports whether the
// status changed; any other state is left untouched.
func (ut *UserTraining) Start(now time.Time) bool {
	if ut.Status != StatusNotStarted {
		return false
	}
	ut.Status = StatusInProgress
	ut.StartedAt = &now
	return true
}

// Complete moves an in-progress assignment to completed.
func (ut *UserTraining) Complete(now time.Time) bool {
	if ut.Status != StatusInProgress {
		return false
	}
	ut.Status = StatusCompleted
	ut.CompletedAt = &now
	return true
}
