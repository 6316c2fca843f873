package postgres

import (
	"context"

	"github.com/SAP-F-2025/training-service/internal/models"
	"github.com/SAP-F-2025/training-service/internal/repositories"
	"gorm.io/gorm"
)

type AuditLogPostgreSQL struct {
	db      *gorm.DB
	helpers *SharedHelpers
}

func NewAuditLogPostgreSQL(db *gorm.DB) repositories.AuditLogRepository {
	return &AuditLogPostgreSQL{
		db:      db,
		helpers: NewSharedHelpers(db),
	}
}

func (a *AuditLogPostgreSQL) Create(ctx context.Context, tx *gorm.DB, entry *models.AuditLog) error {
	return a.helpers.getDB(tx).WithContext(ctx).Create(entry).Error
}

func (a *AuditLogPostgreSQL) List(ctx context.Context, tx *gorm.DB, filters repositories.AuditLogFilters) ([]*models.AuditLog, int64, error) {
	query := a.helpers.getDB(tx).WithContext(ctx).Model(&models.AuditLog{})

	if filters.UserID != nil {
		query = query.Where("user_id = ?", *filters.UserID)
	}
	if filters.EventType != nil {
		query = query.Where("event_type = ?", *filters.EventType)
	}
	if filters.TargetType != "" {
		query = query.Where("target_type = ?", filters.TargetType)
	}
	if filters.DateFrom != nil {
		query = query.Where("created_at >= ?", *filters.DateFrom)
	}
	if filters.DateTo != nil {
		query = query.Where("created_at <= ?", *filters.DateTo)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = a.helpers.ApplyPaginationAndSort(query, "", "desc", filters.Limit, filters.Offset, "created_at")

	var entries []*models.AuditLog
	if err := query.Find(&entries).Error; err != nil {
		return nil, 0, err
	}
	return entries, total, nil
}
