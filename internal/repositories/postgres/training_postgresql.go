package postgres

import (
	"context"

	"github.com/SAP-F-2025/training-service/internal/models"
	"github.com/SAP-F-2025/training-service/internal/repositories"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type TrainingPostgreSQL struct {
	db      *gorm.DB
	helpers *SharedHelpers
}

func NewTrainingPostgreSQL(db *gorm.DB) repositories.TrainingRepository {
	return &TrainingPostgreSQL{
		db:      db,
		helpers: NewSharedHelpers(db),
	}
}

func (t *TrainingPostgreSQL) Create(ctx context.Context, tx *gorm.DB, training *models.Training) error {
	return t.helpers.getDB(tx).WithContext(ctx).Omit(clause.Associations).Create(training).Error
}

func (t *TrainingPostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Training, error) {
	var training models.Training
	err := t.helpers.getDB(tx).WithContext(ctx).
		Preload("Prerequisite").
		First(&training, id).Error
	if err != nil {
		return nil, err
	}
	return &training, nil
}

func (t *TrainingPostgreSQL) GetByCode(ctx context.Context, tx *gorm.DB, code string) (*models.Training, error) {
	var training models.Training
	err := t.helpers.getDB(tx).WithContext(ctx).
		Preload("Prerequisite").
		Where("code = ?", code).
		First(&training).Error
	if err != nil {
		return nil, err
	}
	return &training, nil
}

func (t *TrainingPostgreSQL) GetByIDs(ctx context.Context, tx *gorm.DB, ids []uint) ([]*models.Training, error) {
	var trainings []*models.Training
	if len(ids) == 0 {
		return trainings, nil
	}
	err := t.helpers.getDB(tx).WithContext(ctx).
		Where("id IN ?", ids).
		Order("id ASC").
		Find(&trainings).Error
	return trainings, err
}

// Update writes prerequisite_id even when it is cleared.
func (t *TrainingPostgreSQL) Update(ctx context.Context, tx *gorm.DB, training *models.Training) error {
	return t.helpers.getDB(tx).WithContext(ctx).
		Model(training).
		Updates(map[string]interface{}{
			"code":            training.Code,
			"title":           training.Title,
			"description":     training.Description,
			"prerequisite_id": training.PrerequisiteID,
		}).Error
}

func (t *TrainingPostgreSQL) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	result := t.helpers.getDB(tx).WithContext(ctx).Delete(&models.Training{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (t *TrainingPostgreSQL) List(ctx context.Context, tx *gorm.DB, filters repositories.TrainingFilters) ([]*models.Training, int64, error) {
	query := t.helpers.getDB(tx).WithContext(ctx).Model(&models.Training{})

	if filters.Search != "" {
		pattern := likePattern(filters.Search)
		query = query.Where("LOWER(code) LIKE ? OR LOWER(title) LIKE ?", pattern, pattern)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = t.helpers.ApplyPaginationAndSort(query, filters.SortBy, filters.SortOrder, filters.Limit, filters.Offset,
		"created_at", "created_at", "code", "title")

	var trainings []*models.Training
	if err := query.Preload("Prerequisite").Find(&trainings).Error; err != nil {
		return nil, 0, err
	}
	return trainings, total, nil
}

func (t *TrainingPostgreSQL) ExistsByID(ctx context.Context, tx *gorm.DB, id uint) (bool, error) {
	return exists(t.helpers.getDB(tx).WithContext(ctx).Model(&models.Training{}).Where("id = ?", id))
}

func (t *TrainingPostgreSQL) ExistsByCode(ctx context.Context, tx *gorm.DB, code string, excludeID *uint) (bool, error) {
	query := t.helpers.getDB(tx).WithContext(ctx).Model(&models.Training{}).Where("code = ?", code)
	if excludeID != nil {
		query = query.Where("id != ?", *excludeID)
	}
	return exists(query)
}

func (t *TrainingPostgreSQL) ClearPrerequisite(ctx context.Context, tx *gorm.DB, id uint) error {
	return t.helpers.getDB(tx).WithContext(ctx).
		Model(&models.Training{}).
		Where("prerequisite_id = ?", id).
		Update("prerequisite_id", nil).Error
}

func (t *TrainingPostgreSQL) Count(ctx context.Context, tx *gorm.DB) (int64, error) {
	var count int64
	err := t.helpers.getDB(tx).WithContext(ctx).Model(&models.Training{}).Count(&count).Error
	return count, err
}

func (t *TrainingPostgreSQL) GetRecent(ctx context.Context, tx *gorm.DB, limit int) ([]*models.Training, error) {
	var trainings []*models.Training
	err := t.helpers.getDB(tx).WithContext(ctx).
		Order("created_at DESC").Order("id DESC").
		Limit(limit).
		Find(&trainings).Error
	return trainings, err
}

type TrainingSectionPostgreSQL struct {
	db      *gorm.DB
	helpers *SharedHelpers
}

func NewTrainingSectionPostgreSQL(db *gorm.DB) repositories.TrainingSectionRepository {
	return &TrainingSectionPostgreSQL{
		db:      db,
		helpers: NewSharedHelpers(db),
	}
}

func (s *TrainingSectionPostgreSQL) Create(ctx context.Context, tx *gorm.DB, section *models.TrainingSection) error {
	return s.helpers.getDB(tx).WithContext(ctx).Omit(clause.Associations).Create(section).Error
}

func (s *TrainingSectionPostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.TrainingSection, error) {
	var section models.TrainingSection
	err := s.helpers.getDB(tx).WithContext(ctx).
		Preload("Training").
		Preload("Department").
		Preload("Level").
		First(&section, id).Error
	if err != nil {
		return nil, err
	}
	return &section, nil
}

func (s *TrainingSectionPostgreSQL) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	result := s.helpers.getDB(tx).WithContext(ctx).Delete(&models.TrainingSection{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (s *TrainingSectionPostgreSQL) List(ctx context.Context, tx *gorm.DB, filters repositories.TrainingSectionFilters) ([]*models.TrainingSection, error) {
	query := s.helpers.getDB(tx).WithContext(ctx).Model(&models.TrainingSection{})

	if filters.DepartmentID != nil {
		query = query.Where("department_id = ?", *filters.DepartmentID)
	}
	if filters.TrainingID != nil {
		query = query.Where("training_id = ?", *filters.TrainingID)
	}
	if filters.LevelID != nil {
		query = query.Where("level_id = ?", *filters.LevelID)
	}

	var sections []*models.TrainingSection
	err := query.
		Preload("Training").
		Preload("Department").
		Preload("Level").
		Order("id ASC").
		Find(&sections).Error
	return sections, err
}

func (s *TrainingSectionPostgreSQL) Exists(ctx context.Context, tx *gorm.DB, trainingID, departmentID uint) (bool, error) {
	return exists(s.helpers.getDB(tx).WithContext(ctx).
		Model(&models.TrainingSection{}).
		Where("training_id = ? AND department_id = ?", trainingID, departmentID))
}

func (s *TrainingSectionPostgreSQL) CountByLevel(ctx context.Context, tx *gorm.DB, levelID uint) (int64, error) {
	var count int64
	err := s.helpers.getDB(tx).WithContext(ctx).
		Model(&models.TrainingSection{}).
		Where("level_id = ?", levelID).
		Count(&count).Error
	return count, err
}

func (s *TrainingSectionPostgreSQL) DeleteByDepartment(ctx context.Context, tx *gorm.DB, departmentID uint) (int64, error) {
	result := s.helpers.getDB(tx).WithContext(ctx).
		Where("department_id = ?", departmentID).
		Delete(&models.TrainingSection{})
	return result.RowsAffected, result.Error
}

func (s *TrainingSectionPostgreSQL) DeleteByTraining(ctx context.Context, tx *gorm.DB, trainingID uint) (int64, error) {
	result := s.helpers.getDB(tx).WithContext(ctx).
		Where("training_id = ?", trainingID).
		Delete(&models.TrainingSection{})
	return result.RowsAffected, result.Error
}
