package repositories

import (
	"context"

	"github.com/SAP-F-2025/training-service/internal/models"
	"gorm.io/gorm"
)

// UserRepository interface for user operations
type UserRepository interface {
	Create(ctx context.Context, tx *gorm.DB, user *models.User) error
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.User, error)
	GetByEmail(ctx context.Context, tx *gorm.DB, email string) (*models.User, error)
	Update(ctx context.Context, tx *gorm.DB, user *models.User) error
	Delete(ctx context.Context, tx *gorm.DB, id uint) error
	List(ctx context.Context, tx *gorm.DB, filters UserFilters) ([]*models.User, int64, error)

	// Validation and checks
	ExistsByID(ctx context.Context, tx *gorm.DB, id uint) (bool, error)
	ExistsByEmail(ctx context.Context, tx *gorm.DB, email string, excludeID *uint) (bool, error)

	// Department membership
	ClearDepartment(ctx context.Context, tx *gorm.DB, departmentID uint) error

	// Overview
	Count(ctx context.Context, tx *gorm.DB) (int64, error)
	GetRecent(ctx context.Context, tx *gorm.DB, limit int) ([]*models.User, error)
}
