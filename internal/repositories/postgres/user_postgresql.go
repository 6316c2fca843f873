package postgres

import (
	"context"

	"github.com/SAP-F-2025/training-service/internal/models"
	"github.com/SAP-F-2025/training-service/internal/repositories"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type UserPostgreSQL struct {
	db      *gorm.DB
	helpers *SharedHelpers
}

func NewUserPostgreSQL(db *gorm.DB) repositories.UserRepository {
	return &UserPostgreSQL{
		db:      db,
		helpers: NewSharedHelpers(db),
	}
}

func (u *UserPostgreSQL) Create(ctx context.Context, tx *gorm.DB, user *models.User) error {
	return u.helpers.getDB(tx).WithContext(ctx).Omit(clause.Associations).Create(user).Error
}

func (u *UserPostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.User, error) {
	var user models.User
	err := u.helpers.getDB(tx).WithContext(ctx).
		Preload("Department").
		First(&user, id).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (u *UserPostgreSQL) GetByEmail(ctx context.Context, tx *gorm.DB, email string) (*models.User, error) {
	var user models.User
	err := u.helpers.getDB(tx).WithContext(ctx).
		Preload("Department").
		Where("email = ?", email).
		First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// Update writes every column, including zero values such as is_active=false
// and a cleared department.
func (u *UserPostgreSQL) Update(ctx context.Context, tx *gorm.DB, user *models.User) error {
	return u.helpers.getDB(tx).WithContext(ctx).
		Model(user).
		Updates(map[string]interface{}{
			"full_name":     user.FullName,
			"email":         user.Email,
			"password_hash": user.PasswordHash,
			"role":          user.Role,
			"department_id": user.DepartmentID,
			"is_active":     user.IsActive,
		}).Error
}

func (u *UserPostgreSQL) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	result := u.helpers.getDB(tx).WithContext(ctx).Delete(&models.User{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (u *UserPostgreSQL) List(ctx context.Context, tx *gorm.DB, filters repositories.UserFilters) ([]*models.User, int64, error) {
	query := u.helpers.getDB(tx).WithContext(ctx).Model(&models.User{})

	if filters.Role != nil {
		query = query.Where("role = ?", *filters.Role)
	}
	if filters.DepartmentID != nil {
		query = query.Where("department_id = ?", *filters.DepartmentID)
	}
	if filters.IsActive != nil {
		query = query.Where("is_active = ?", *filters.IsActive)
	}
	if filters.Search != "" {
		pattern := likePattern(filters.Search)
		query = query.Where("LOWER(full_name) LIKE ? OR LOWER(email) LIKE ?", pattern, pattern)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = u.helpers.ApplyPaginationAndSort(query, filters.SortBy, filters.SortOrder, filters.Limit, filters.Offset,
		"created_at", "created_at", "full_name", "email")

	var users []*models.User
	if err := query.Preload("Department").Find(&users).Error; err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

func (u *UserPostgreSQL) ExistsByID(ctx context.Context, tx *gorm.DB, id uint) (bool, error) {
	return exists(u.helpers.getDB(tx).WithContext(ctx).Model(&models.User{}).Where("id = ?", id))
}

func (u *UserPostgreSQL) ExistsByEmail(ctx context.Context, tx *gorm.DB, email string, excludeID *uint) (bool, error) {
	query := u.helpers.getDB(tx).WithContext(ctx).Model(&models.User{}).Where("email = ?", email)
	if excludeID != nil {
		query = query.Where("id != ?", *excludeID)
	}
	return exists(query)
}

func (u *UserPostgreSQL) ClearDepartment(ctx context.Context, tx *gorm.DB, departmentID uint) error {
	return u.helpers.getDB(tx).WithContext(ctx).
		Model(&models.User{}).
		Where("department_id = ?", departmentID).
		Update("department_id", nil).Error
}

func (u *UserPostgreSQL) Count(ctx context.Context, tx *gorm.DB) (int64, error) {
	var count int64
	err := u.helpers.getDB(tx).WithContext(ctx).Model(&models.User{}).Count(&count).Error
	return count, err
}

func (u *UserPostgreSQL) GetRecent(ctx context.Context, tx *gorm.DB, limit int) ([]*models.User, error) {
	var users []*models.User
	err := u.helpers.getDB(tx).WithContext(ctx).
		Order("created_at DESC").Order("id DESC").
		Limit(limit).
		Find(&users).Error
	return users, err
}
