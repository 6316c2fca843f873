package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/SAP-F-2025/training-service/internal/cache"
	"github.com/SAP-F-2025/training-service/internal/models"
	"github.com/SAP-F-2025/training-service/internal/repositories"
	"github.com/SAP-F-2025/training-service/internal/validator"
	"gorm.io/gorm"
)

type trainingSectionService struct {
	repo      repositories.Repository
	audit     AuditService
	cache     cache.CacheService
	logger    *slog.Logger
	validator *validator.Validator
}

func NewTrainingSectionService(
	repo repositories.Repository,
	audit AuditService,
	cacheService cache.CacheService,
	logger *slog.Logger,
	validator *validator.Validator,
) TrainingSectionService {
	return &trainingSectionService{
		repo:      repo,
		audit:     audit,
		cache:     cacheService,
		logger:    logger,
		validator: validator,
	}
}

func (s *trainingSectionService) List(ctx context.Context, p Principal, filters repositories.TrainingSectionFilters) ([]*models.TrainingSection, error) {
	if err := Authorize(p, AdminOnly); err != nil {
		return nil, err
	}

	sections, err := s.repo.TrainingSection().List(ctx, nil, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list training sections: %w", err)
	}
	return sections, nil
}

// Create binds a training to a department at a level. A second section for
// the same (training, department) pair is a validation failure.
func (s *trainingSectionService) Create(ctx context.Context, p Principal, req *TrainingSectionRequest) (*models.TrainingSection, error) {
	if err := Authorize(p, AdminOnly); err != nil {
		return nil, err
	}
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}
	if err := s.checkReferences(ctx, req); err != nil {
		return nil, err
	}

	exists, err := s.repo.TrainingSection().Exists(ctx, nil, req.TrainingID, req.DepartmentID)
	if err != nil {
		return nil, fmt.Errorf("failed to check training section: %w", err)
	}
	if exists {
		return nil, fieldError("training_id", "This training already has a section in the department", req.TrainingID)
	}

	section := &models.TrainingSection{
		TrainingID:   req.TrainingID,
		DepartmentID: req.DepartmentID,
		LevelID:      req.LevelID,
	}

	err = inTx(ctx, s.repo, func(tx *gorm.DB) error {
		if err := s.repo.TrainingSection().Create(ctx, tx, section); err != nil {
			return duplicateAsValidation(err, "training_id", "This training already has a section in the department", req.TrainingID)
		}
		return s.audit.Record(ctx, tx, p, AuditEntry{
			Event:       models.AuditSectionCreated,
			TargetType:  "training_section",
			TargetID:    section.ID,
			Description: "created training section",
			Metadata: map[string]interface{}{
				"training_id":   section.TrainingID,
				"department_id": section.DepartmentID,
				"level_id":      section.LevelID,
			},
		})
	})
	if err != nil {
		return nil, err
	}

	invalidateReports(ctx, s.cache, s.logger)
	return s.repo.TrainingSection().GetByID(ctx, nil, section.ID)
}

func (s *trainingSectionService) Delete(ctx context.Context, p Principal, id uint) error {
	if err := Authorize(p, AdminOnly); err != nil {
		return err
	}

	section, err := s.repo.TrainingSection().GetByID(ctx, nil, id)
	if err != nil {
		return mapNotFound(err, ErrTrainingSectionNotFound, "get training section")
	}

	err = inTx(ctx, s.repo, func(tx *gorm.DB) error {
		if err := s.repo.TrainingSection().Delete(ctx, tx, id); err != nil {
			return mapNotFound(err, ErrTrainingSectionNotFound, "delete training section")
		}
		return s.audit.Record(ctx, tx, p, AuditEntry{
			Event:       models.AuditSectionDeleted,
			TargetType:  "training_section",
			TargetID:    id,
			Description: "deleted training section",
			Metadata: map[string]interface{}{
				"training_id":   section.TrainingID,
				"department_id": section.DepartmentID,
			},
		})
	})
	if err != nil {
		return err
	}

	invalidateReports(ctx, s.cache, s.logger)
	return nil
}

func (s *trainingSectionService) checkReferences(ctx context.Context, req *TrainingSectionRequest) error {
	var errs ValidationErrors

	ok, err := s.repo.Training().ExistsByID(ctx, nil, req.TrainingID)
	if err != nil {
		return fmt.Errorf("failed to check training: %w", err)
	}
	if !ok {
		errs = append(errs, *NewValidationError("training_id", "Training does not exist", req.TrainingID))
	}

	ok, err = s.repo.Department().ExistsByID(ctx, nil, req.DepartmentID)
	if err != nil {
		return fmt.Errorf("failed to check department: %w", err)
	}
	if !ok {
		errs = append(errs, *NewValidationError("department_id", "Department does not exist", req.DepartmentID))
	}

	ok, err = s.repo.Level().ExistsByID(ctx, nil, req.LevelID)
	if err != nil {
		return fmt.Errorf("failed to check level: %w", err)
	}
	if !ok {
		errs = append(errs, *NewValidationError("level_id", "Level does not exist", req.LevelID))
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}
