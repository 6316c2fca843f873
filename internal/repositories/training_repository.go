package repositories

import (
	"context"

	"github.com/SAP-F-2025/training-service/internal/models"
	"gorm.io/gorm"
)

type TrainingRepository interface {
	Create(ctx context.Context, tx *gorm.DB, training *models.Training) error
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Training, error)
	GetByCode(ctx context.Context, tx *gorm.DB, code string) (*models.Training, error)
	GetByIDs(ctx context.Context, tx *gorm.DB, ids []uint) ([]*models.Training, error)
	Update(ctx context.Context, tx *gorm.DB, training *models.Training) error
	Delete(ctx context.Context, tx *gorm.DB, id uint) error
	List(ctx context.Context, tx *gorm.DB, filters TrainingFilters) ([]*models.Training, int64, error)

	ExistsByID(ctx context.Context, tx *gorm.DB, id uint) (bool, error)
	ExistsByCode(ctx context.Context, tx *gorm.DB, code string, excludeID *uint) (bool, error)

	// ClearPrerequisite unsets prerequisite_id on every training pointing at id.
	ClearPrerequisite(ctx context.Context, tx *gorm.DB, id uint) error

	Count(ctx context.Context, tx *gorm.DB) (int64, error)
	GetRecent(ctx context.Context, tx *gorm.DB, limit int) ([]*models.Training, error)
}

type TrainingSectionRepository interface {
	Create(ctx context.Context, tx *gorm.DB, section *models.TrainingSection) error
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.TrainingSection, error)
	Delete(ctx context.Context, tx *gorm.DB, id uint) error
	// List preloads training, department and level.
	List(ctx context.Context, tx *gorm.DB, filters TrainingSectionFilters) ([]*models.TrainingSection, error)

	Exists(ctx context.Context, tx *gorm.DB, trainingID, departmentID uint) (bool, error)
	CountByLevel(ctx context.Context, tx *gorm.DB, levelID uint) (int64, error)

	DeleteByDepartment(ctx context.Context, tx *gorm.DB, departmentID uint) (int64, error)
	DeleteByTraining(ctx context.Context, tx *gorm.DB, trainingID uint) (int64, error)
}
