package repositories

import (
	"context"

	"github.com/SAP-F-2025/training-service/internal/models"
	"gorm.io/gorm"
)

type UserTrainingRepository interface {
	Create(ctx context.Context, tx *gorm.DB, assignment *models.UserTraining) error
	GetByUserAndTraining(ctx context.Context, tx *gorm.DB, userID, trainingID uint) (*models.UserTraining, error)
	// UpdateStatus persists status and both timestamps.
	UpdateStatus(ctx context.Context, tx *gorm.DB, assignment *models.UserTraining) error
	// List preloads user and training, newest first.
	List(ctx context.Context, tx *gorm.DB, filters UserTrainingFilters) ([]*models.UserTraining, int64, error)

	TrainingIDsByUser(ctx context.Context, tx *gorm.DB, userID uint, status *models.TrainingStatus) ([]uint, error)
	StatusCountsByUser(ctx context.Context, tx *gorm.DB, userID uint) (map[models.TrainingStatus]int64, error)
	CountsByTrainings(ctx context.Context, tx *gorm.DB, trainingIDs []uint) (map[uint]AssignmentCounts, error)
	CountByStatus(ctx context.Context, tx *gorm.DB, status models.TrainingStatus) (int64, error)

	DeleteByUser(ctx context.Context, tx *gorm.DB, userID uint) (int64, error)
	DeleteByTraining(ctx context.Context, tx *gorm.DB, trainingID uint) (int64, error)
}

type AuditLogRepository interface {
	Create(ctx context.Context, tx *gorm.DB, entry *models.AuditLog) error
	List(ctx context.Context, tx *gorm.DB, filters AuditLogFilters) ([]*models.AuditLog, int64, error)
}
