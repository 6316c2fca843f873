package postgres

import (
	"context"

	"github.com/SAP-F-2025/training-service/internal/models"
	"github.com/SAP-F-2025/training-service/internal/repositories"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type UserTrainingPostgreSQL struct {
	db      *gorm.DB
	helpers *SharedHelpers
}

func NewUserTrainingPostgreSQL(db *gorm.DB) repositories.UserTrainingRepository {
	return &UserTrainingPostgreSQL{
		db:      db,
		helpers: NewSharedHelpers(db),
	}
}

func (u *UserTrainingPostgreSQL) Create(ctx context.Context, tx *gorm.DB, assignment *models.UserTraining) error {
	return u.helpers.getDB(tx).WithContext(ctx).Omit(clause.Associations).Create(assignment).Error
}

func (u *UserTrainingPostgreSQL) GetByUserAndTraining(ctx context.Context, tx *gorm.DB, userID, trainingID uint) (*models.UserTraining, error) {
	var assignment models.UserTraining
	err := u.helpers.getDB(tx).WithContext(ctx).
		Preload("Training").
		Where("user_id = ? AND training_id = ?", userID, trainingID).
		First(&assignment).Error
	if err != nil {
		return nil, err
	}
	return &assignment, nil
}

func (u *UserTrainingPostgreSQL) UpdateStatus(ctx context.Context, tx *gorm.DB, assignment *models.UserTraining) error {
	return u.helpers.getDB(tx).WithContext(ctx).
		Model(assignment).
		Updates(map[string]interface{}{
			"status":       assignment.Status,
			"started_at":   assignment.StartedAt,
			"completed_at": assignment.CompletedAt,
		}).Error
}

func (u *UserTrainingPostgreSQL) List(ctx context.Context, tx *gorm.DB, filters repositories.UserTrainingFilters) ([]*models.UserTraining, int64, error) {
	query := u.applyFilters(u.helpers.getDB(tx).WithContext(ctx).Model(&models.UserTraining{}), filters)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = u.helpers.ApplyPaginationAndSort(query, "", "desc", filters.Limit, filters.Offset, "created_at")

	var assignments []*models.UserTraining
	err := query.
		Preload("User").
		Preload("Training").
		Find(&assignments).Error
	if err != nil {
		return nil, 0, err
	}
	return assignments, total, nil
}

func (u *UserTrainingPostgreSQL) TrainingIDsByUser(ctx context.Context, tx *gorm.DB, userID uint, status *models.TrainingStatus) ([]uint, error) {
	query := u.helpers.getDB(tx).WithContext(ctx).
		Model(&models.UserTraining{}).
		Where("user_id = ?", userID)
	if status != nil {
		query = query.Where("status = ?", *status)
	}

	var ids []uint
	err := query.Order("training_id ASC").Pluck("training_id", &ids).Error
	return ids, err
}

func (u *UserTrainingPostgreSQL) StatusCountsByUser(ctx context.Context, tx *gorm.DB, userID uint) (map[models.TrainingStatus]int64, error) {
	var rows []struct {
		Status models.TrainingStatus
		Count  int64
	}
	err := u.helpers.getDB(tx).WithContext(ctx).
		Model(&models.UserTraining{}).
		Select("status, COUNT(*) AS count").
		Where("user_id = ?", userID).
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[models.TrainingStatus]int64, len(models.TrainingStatuses))
	for _, status := range models.TrainingStatuses {
		counts[status] = 0
	}
	for _, row := range rows {
		counts[row.Status] = row.Count
	}
	return counts, nil
}

// CountsByTrainings counts assignments per training across all users. Trainings
// without assignments are present with zero counts.
func (u *UserTrainingPostgreSQL) CountsByTrainings(ctx context.Context, tx *gorm.DB, trainingIDs []uint) (map[uint]repositories.AssignmentCounts, error) {
	counts := make(map[uint]repositories.AssignmentCounts, len(trainingIDs))
	for _, id := range trainingIDs {
		counts[id] = repositories.AssignmentCounts{TrainingID: id}
	}
	if len(trainingIDs) == 0 {
		return counts, nil
	}

	var rows []repositories.AssignmentCounts
	err := u.helpers.getDB(tx).WithContext(ctx).
		Model(&models.UserTraining{}).
		Select("training_id, COUNT(*) AS assigned, SUM(CASE WHEN status = ? THEN 1 ELSE 0 END) AS completed", models.StatusCompleted).
		Where("training_id IN ?", trainingIDs).
		Group("training_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	for _, row := range rows {
		counts[row.TrainingID] = row
	}
	return counts, nil
}

func (u *UserTrainingPostgreSQL) CountByStatus(ctx context.Context, tx *gorm.DB, status models.TrainingStatus) (int64, error) {
	var count int64
	err := u.helpers.getDB(tx).WithContext(ctx).
		Model(&models.UserTraining{}).
		Where("status = ?", status).
		Count(&count).Error
	return count, err
}

func (u *UserTrainingPostgreSQL) DeleteByUser(ctx context.Context, tx *gorm.DB, userID uint) (int64, error) {
	result := u.helpers.getDB(tx).WithContext(ctx).
		Where("user_id = ?", userID).
		Delete(&models.UserTraining{})
	return result.RowsAffected, result.Error
}

func (u *UserTrainingPostgreSQL) DeleteByTraining(ctx context.Context, tx *gorm.DB, trainingID uint) (int64, error) {
	result := u.helpers.getDB(tx).WithContext(ctx).
		Where("training_id = ?", trainingID).
		Delete(&models.UserTraining{})
	return result.RowsAffected, result.Error
}

func (u *UserTrainingPostgreSQL) applyFilters(query *gorm.DB, filters repositories.UserTrainingFilters) *gorm.DB {
	if filters.UserID != nil {
		query = query.Where("user_id = ?", *filters.UserID)
	}
	if filters.TrainingID != nil {
		query = query.Where("training_id = ?", *filters.TrainingID)
	}
	if filters.Status != nil {
		query = query.Where("status = ?", *filters.Status)
	}
	return query
}
