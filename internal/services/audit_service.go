package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/SAP-F-2025/training-service/internal/models"
	"github.com/SAP-F-2025/training-service/internal/repositories"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// AuditEntry describes one administrative mutation or status transition.
type AuditEntry struct {
	Event       models.AuditEventType
	TargetType  string
	TargetID    uint
	Description string
	Metadata    map[string]interface{}
}

type auditService struct {
	repo   repositories.Repository
	logger *slog.Logger
}

func NewAuditService(repo repositories.Repository, logger *slog.Logger) AuditService {
	return &auditService{
		repo:   repo,
		logger: logger,
	}
}

func (s *auditService) Record(ctx context.Context, tx *gorm.DB, p Principal, entry AuditEntry) error {
	log := &models.AuditLog{
		EventType:   entry.Event,
		UserID:      p.UserID,
		UserEmail:   p.Email,
		UserRole:    p.Role,
		TargetType:  entry.TargetType,
		Description: entry.Description,
	}
	if log.UserRole == "" {
		// Self-registration has no acting account yet.
		log.UserRole = models.RoleStaff
	}
	if entry.TargetID != 0 {
		id := entry.TargetID
		log.TargetID = &id
	}
	if len(entry.Metadata) > 0 {
		raw, err := json.Marshal(entry.Metadata)
		if err != nil {
			return fmt.Errorf("failed to encode audit metadata: %w", err)
		}
		log.Metadata = datatypes.JSON(raw)
	}

	if err := s.repo.AuditLog().Create(ctx, tx, log); err != nil {
		return fmt.Errorf("failed to write audit log: %w", err)
	}
	return nil
}

func (s *auditService) List(ctx context.Context, p Principal, filters repositories.AuditLogFilters) (*AuditLogListResponse, error) {
	if err := Authorize(p, AdminOnly); err != nil {
		return nil, err
	}

	entries, total, err := s.repo.AuditLog().List(ctx, nil, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list audit logs: %w", err)
	}
	return &AuditLogListResponse{Entries: entries, Total: total}, nil
}
