package postgres

import (
	"context"

	"github.com/SAP-F-2025/training-service/internal/models"
	"github.com/SAP-F-2025/training-service/internal/repositories"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type DepartmentPostgreSQL struct {
	db      *gorm.DB
	helpers *SharedHelpers
}

func NewDepartmentPostgreSQL(db *gorm.DB) repositories.DepartmentRepository {
	return &DepartmentPostgreSQL{
		db:      db,
		helpers: NewSharedHelpers(db),
	}
}

func (d *DepartmentPostgreSQL) Create(ctx context.Context, tx *gorm.DB, department *models.Department) error {
	return d.helpers.getDB(tx).WithContext(ctx).Omit(clause.Associations).Create(department).Error
}

func (d *DepartmentPostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Department, error) {
	var department models.Department
	if err := d.helpers.getDB(tx).WithContext(ctx).First(&department, id).Error; err != nil {
		return nil, err
	}
	return &department, nil
}

func (d *DepartmentPostgreSQL) GetByIDWithSections(ctx context.Context, tx *gorm.DB, id uint) (*models.Department, error) {
	var department models.Department
	err := d.helpers.getDB(tx).WithContext(ctx).
		Preload("Sections", func(db *gorm.DB) *gorm.DB {
			return db.Order("training_sections.id ASC")
		}).
		Preload("Sections.Training").
		Preload("Sections.Level").
		First(&department, id).Error
	if err != nil {
		return nil, err
	}
	return &department, nil
}

func (d *DepartmentPostgreSQL) Update(ctx context.Context, tx *gorm.DB, department *models.Department) error {
	return d.helpers.getDB(tx).WithContext(ctx).
		Model(department).
		Updates(map[string]interface{}{
			"name":        department.Name,
			"description": department.Description,
		}).Error
}

func (d *DepartmentPostgreSQL) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	result := d.helpers.getDB(tx).WithContext(ctx).Delete(&models.Department{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (d *DepartmentPostgreSQL) List(ctx context.Context, tx *gorm.DB) ([]*models.Department, error) {
	var departments []*models.Department
	err := d.helpers.getDB(tx).WithContext(ctx).Order("name ASC").Find(&departments).Error
	return departments, err
}

func (d *DepartmentPostgreSQL) ExistsByID(ctx context.Context, tx *gorm.DB, id uint) (bool, error) {
	return exists(d.helpers.getDB(tx).WithContext(ctx).Model(&models.Department{}).Where("id = ?", id))
}

func (d *DepartmentPostgreSQL) ExistsByName(ctx context.Context, tx *gorm.DB, name string, excludeID *uint) (bool, error) {
	query := d.helpers.getDB(tx).WithContext(ctx).Model(&models.Department{}).Where("name = ?", name)
	if excludeID != nil {
		query = query.Where("id != ?", *excludeID)
	}
	return exists(query)
}

func (d *DepartmentPostgreSQL) Count(ctx context.Context, tx *gorm.DB) (int64, error) {
	var count int64
	err := d.helpers.getDB(tx).WithContext(ctx).Model(&models.Department{}).Count(&count).Error
	return count, err
}

type LevelPostgreSQL struct {
	db      *gorm.DB
	helpers *SharedHelpers
}

func NewLevelPostgreSQL(db *gorm.DB) repositories.LevelRepository {
	return &LevelPostgreSQL{
		db:      db,
		helpers: NewSharedHelpers(db),
	}
}

func (l *LevelPostgreSQL) Create(ctx context.Context, tx *gorm.DB, level *models.Level) error {
	return l.helpers.getDB(tx).WithContext(ctx).Create(level).Error
}

func (l *LevelPostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Level, error) {
	var level models.Level
	if err := l.helpers.getDB(tx).WithContext(ctx).First(&level, id).Error; err != nil {
		return nil, err
	}
	return &level, nil
}

func (l *LevelPostgreSQL) GetByName(ctx context.Context, tx *gorm.DB, name string) (*models.Level, error) {
	var level models.Level
	if err := l.helpers.getDB(tx).WithContext(ctx).Where("name = ?", name).First(&level).Error; err != nil {
		return nil, err
	}
	return &level, nil
}

func (l *LevelPostgreSQL) Update(ctx context.Context, tx *gorm.DB, level *models.Level) error {
	return l.helpers.getDB(tx).WithContext(ctx).Model(level).Update("name", level.Name).Error
}

func (l *LevelPostgreSQL) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	result := l.helpers.getDB(tx).WithContext(ctx).Delete(&models.Level{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (l *LevelPostgreSQL) List(ctx context.Context, tx *gorm.DB) ([]*models.Level, error) {
	var levels []*models.Level
	err := l.helpers.getDB(tx).WithContext(ctx).Order("id ASC").Find(&levels).Error
	return levels, err
}

func (l *LevelPostgreSQL) ExistsByID(ctx context.Context, tx *gorm.DB, id uint) (bool, error) {
	return exists(l.helpers.getDB(tx).WithContext(ctx).Model(&models.Level{}).Where("id = ?", id))
}

func (l *LevelPostgreSQL) ExistsByName(ctx context.Context, tx *gorm.DB, name string, excludeID *uint) (bool, error) {
	query := l.helpers.getDB(tx).WithContext(ctx).Model(&models.Level{}).Where("name = ?", name)
	if excludeID != nil {
		query = query.Where("id != ?", *excludeID)
	}
	return exists(query)
}

func (l *LevelPostgreSQL) Count(ctx context.Context, tx *gorm.DB) (int64, error) {
	var count int64
	err := l.helpers.getDB(tx).WithContext(ctx).Model(&models.Level{}).Count(&count).Error
	return count, err
}
