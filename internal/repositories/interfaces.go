package repositories

import (
	"errors"
	"time"

	"github.com/SAP-F-2025/training-service/internal/models"
	"gorm.io/gorm"
)

// Repository groups every entity repository behind one handle. Each method
// of the entity repositories takes an optional tx; nil means the root
// connection.
type Repository interface {
	User() UserRepository
	Department() DepartmentRepository
	Level() LevelRepository
	Training() TrainingRepository
	TrainingSection() TrainingSectionRepository
	UserTraining() UserTrainingRepository
	AuditLog() AuditLogRepository

	DB() *gorm.DB
}

// ===== SHARED FILTER STRUCTS =====

type UserFilters struct {
	Role         *models.UserRole `json:"role"`
	DepartmentID *uint            `json:"department_id"`
	IsActive     *bool            `json:"is_active"`
	Search       string           `json:"search"`
	Limit        int              `json:"limit"`
	Offset       int              `json:"offset"`
	SortBy       string           `json:"sort_by"`    // "created_at", "full_name", "email"
	SortOrder    string           `json:"sort_order"` // "asc", "desc"
}

type TrainingFilters struct {
	Search    string `json:"search"`
	Limit     int    `json:"limit"`
	Offset    int    `json:"offset"`
	SortBy    string `json:"sort_by"` // "created_at", "code", "title"
	SortOrder string `json:"sort_order"`
}

type TrainingSectionFilters struct {
	DepartmentID *uint `json:"department_id"`
	TrainingID   *uint `json:"training_id"`
	LevelID      *uint `json:"level_id"`
}

type UserTrainingFilters struct {
	UserID     *uint                  `json:"user_id"`
	TrainingID *uint                  `json:"training_id"`
	Status     *models.TrainingStatus `json:"status"`
	Limit      int                    `json:"limit"`
	Offset     int                    `json:"offset"`
}

type AuditLogFilters struct {
	UserID     *uint                  `json:"user_id"`
	EventType  *models.AuditEventType `json:"event_type"`
	TargetType string                 `json:"target_type"`
	DateFrom   *time.Time             `json:"date_from"`
	DateTo     *time.Time             `json:"date_to"`
	Limit      int                    `json:"limit"`
	Offset     int                    `json:"offset"`
}

// ===== SHARED AGGREGATE STRUCTS =====

// AssignmentCounts holds UserTraining totals for one training across every user.
type AssignmentCounts struct {
	TrainingID uint  `json:"training_id"`
	Assigned   int64 `json:"assigned"`
	Completed  int64 `json:"completed"`
}

// ===== ERROR CLASSIFICATION =====

func IsNotFoundError(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

// IsDuplicateError reports a unique constraint violation. Requires the
// connection to be opened with TranslateError.
func IsDuplicateError(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey)
}
