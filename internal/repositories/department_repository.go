package repositories

import (
	"context"

	"github.com/SAP-F-2025/training-service/internal/models"
	"gorm.io/gorm"
)

type DepartmentRepository interface {
	Create(ctx context.Context, tx *gorm.DB, department *models.Department) error
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Department, error)
	// GetByIDWithSections preloads sections with their training and level.
	GetByIDWithSections(ctx context.Context, tx *gorm.DB, id uint) (*models.Department, error)
	Update(ctx context.Context, tx *gorm.DB, department *models.Department) error
	Delete(ctx context.Context, tx *gorm.DB, id uint) error
	List(ctx context.Context, tx *gorm.DB) ([]*models.Department, error)

	ExistsByID(ctx context.Context, tx *gorm.DB, id uint) (bool, error)
	ExistsByName(ctx context.Context, tx *gorm.DB, name string, excludeID *uint) (bool, error)
	Count(ctx context.Context, tx *gorm.DB) (int64, error)
}

type LevelRepository interface {
	Create(ctx context.Context, tx *gorm.DB, level *models.Level) error
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Level, error)
	GetByName(ctx context.Context, tx *gorm.DB, name string) (*models.Level, error)
	Update(ctx context.Context, tx *gorm.DB, level *models.Level) error
	Delete(ctx context.Context, tx *gorm.DB, id uint) error
	List(ctx context.Context, tx *gorm.DB) ([]*models.Level, error)

	ExistsByID(ctx context.Context, tx *gorm.DB, id uint) (bool, error)
	ExistsByName(ctx context.Context, tx *gorm.DB, name string, excludeID *uint) (bool, error)
	Count(ctx context.Context, tx *gorm.DB) (int64, error)
}
