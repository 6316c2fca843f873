package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/SAP-F-2025/training-service/internal/cache"
	"github.com/SAP-F-2025/training-service/internal/models"
	"github.com/SAP-F-2025/training-service/internal/repositories"
	"github.com/SAP-F-2025/training-service/internal/validator"
	"gorm.io/gorm"
)

type trainingService struct {
	repo      repositories.Repository
	audit     AuditService
	cache     cache.CacheService
	logger    *slog.Logger
	validator *validator.Validator
}

func NewTrainingService(
	repo repositories.Repository,
	audit AuditService,
	cacheService cache.CacheService,
	logger *slog.Logger,
	validator *validator.Validator,
) TrainingService {
	return &trainingService{
		repo:      repo,
		audit:     audit,
		cache:     cacheService,
		logger:    logger,
		validator: validator,
	}
}

func (s *trainingService) List(ctx context.Context, p Principal, filters repositories.TrainingFilters) (*TrainingListResponse, error) {
	if err := Authorize(p, AdminOnly); err != nil {
		return nil, err
	}

	trainings, total, err := s.repo.Training().List(ctx, nil, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list trainings: %w", err)
	}
	return &TrainingListResponse{Trainings: trainings, Total: total}, nil
}

func (s *trainingService) Get(ctx context.Context, p Principal, id uint) (*models.Training, error) {
	if err := Authorize(p, AdminOnly); err != nil {
		return nil, err
	}

	training, err := s.repo.Training().GetByID(ctx, nil, id)
	if err != nil {
		return nil, mapNotFound(err, ErrTrainingNotFound, "get training")
	}
	return training, nil
}

func (s *trainingService) Create(ctx context.Context, p Principal, req *TrainingRequest) (*models.Training, error) {
	if err := Authorize(p, AdminOnly); err != nil {
		return nil, err
	}
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	code := strings.TrimSpace(req.Code)
	if err := s.checkCodeFree(ctx, code, nil); err != nil {
		return nil, err
	}
	prerequisiteID := optionalID(req.PrerequisiteID)
	if err := s.checkPrerequisite(ctx, prerequisiteID); err != nil {
		return nil, err
	}

	training := &models.Training{
		Code:           code,
		Title:          strings.TrimSpace(req.Title),
		Description:    req.Description,
		PrerequisiteID: prerequisiteID,
	}

	err := inTx(ctx, s.repo, func(tx *gorm.DB) error {
		if err := s.repo.Training().Create(ctx, tx, training); err != nil {
			return duplicateAsValidation(err, "code", "Training code already exists", code)
		}
		return s.audit.Record(ctx, tx, p, AuditEntry{
			Event:       models.AuditTrainingCreated,
			TargetType:  "training",
			TargetID:    training.ID,
			Description: fmt.Sprintf("created training %s", training.Code),
			Metadata:    map[string]interface{}{"prerequisite_id": training.PrerequisiteID},
		})
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Training created", "training_id", training.ID, "code", training.Code, "user_id", p.UserID)
	return s.repo.Training().GetByID(ctx, nil, training.ID)
}

func (s *trainingService) Update(ctx context.Context, p Principal, id uint, req *TrainingRequest) (*models.Training, error) {
	if err := Authorize(p, AdminOnly); err != nil {
		return nil, err
	}
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	training, err := s.repo.Training().GetByID(ctx, nil, id)
	if err != nil {
		return nil, mapNotFound(err, ErrTrainingNotFound, "get training")
	}

	code := strings.TrimSpace(req.Code)
	if err := s.checkCodeFree(ctx, code, &id); err != nil {
		return nil, err
	}
	prerequisiteID := optionalID(req.PrerequisiteID)
	if err := s.checkPrerequisite(ctx, prerequisiteID); err != nil {
		return nil, err
	}

	training.Code = code
	training.Title = strings.TrimSpace(req.Title)
	training.Description = req.Description
	training.PrerequisiteID = prerequisiteID
	training.Prerequisite = nil

	err = inTx(ctx, s.repo, func(tx *gorm.DB) error {
		if err := s.repo.Training().Update(ctx, tx, training); err != nil {
			return duplicateAsValidation(err, "code", "Training code already exists", code)
		}
		return s.audit.Record(ctx, tx, p, AuditEntry{
			Event:       models.AuditTrainingUpdated,
			TargetType:  "training",
			TargetID:    training.ID,
			Description: fmt.Sprintf("updated training %s", training.Code),
			Metadata:    map[string]interface{}{"prerequisite_id": training.PrerequisiteID},
		})
	})
	if err != nil {
		return nil, err
	}

	invalidateReports(ctx, s.cache, s.logger)
	return s.repo.Training().GetByID(ctx, nil, id)
}

// Delete removes the training with its sections and assignments. Trainings
// that named it as prerequisite keep existing without one.
func (s *trainingService) Delete(ctx context.Context, p Principal, id uint) error {
	if err := Authorize(p, AdminOnly); err != nil {
		return err
	}

	training, err := s.repo.Training().GetByID(ctx, nil, id)
	if err != nil {
		return mapNotFound(err, ErrTrainingNotFound, "get training")
	}

	err = inTx(ctx, s.repo, func(tx *gorm.DB) error {
		sections, err := s.repo.TrainingSection().DeleteByTraining(ctx, tx, id)
		if err != nil {
			return fmt.Errorf("failed to delete training sections: %w", err)
		}
		assignments, err := s.repo.UserTraining().DeleteByTraining(ctx, tx, id)
		if err != nil {
			return fmt.Errorf("failed to delete assignments: %w", err)
		}
		if err := s.repo.Training().ClearPrerequisite(ctx, tx, id); err != nil {
			return fmt.Errorf("failed to clear prerequisite references: %w", err)
		}
		if err := s.repo.Training().Delete(ctx, tx, id); err != nil {
			return mapNotFound(err, ErrTrainingNotFound, "delete training")
		}
		return s.audit.Record(ctx, tx, p, AuditEntry{
			Event:       models.AuditTrainingDeleted,
			TargetType:  "training",
			TargetID:    id,
			Description: fmt.Sprintf("deleted training %s", training.Code),
			Metadata: map[string]interface{}{
				"sections_removed":    sections,
				"assignments_removed": assignments,
			},
		})
	})
	if err != nil {
		return err
	}

	invalidateReports(ctx, s.cache, s.logger)
	s.logger.Info("Training deleted", "training_id", id, "user_id", p.UserID)
	return nil
}

func (s *trainingService) checkCodeFree(ctx context.Context, code string, excludeID *uint) error {
	taken, err := s.repo.Training().ExistsByCode(ctx, nil, code, excludeID)
	if err != nil {
		return fmt.Errorf("failed to check training code: %w", err)
	}
	if taken {
		return fieldError("code", "Training code already exists", code)
	}
	return nil
}

// checkPrerequisite only requires the prerequisite to exist. Chains are not
// checked for cycles, so a training may name itself.
func (s *trainingService) checkPrerequisite(ctx context.Context, prerequisiteID *uint) error {
	if prerequisiteID == nil {
		return nil
	}
	ok, err := s.repo.Training().ExistsByID(ctx, nil, *prerequisiteID)
	if err != nil {
		return fmt.Errorf("failed to check prerequisite: %w", err)
	}
	if !ok {
		return fieldError("prerequisite_id", "Prerequisite training does not exist", *prerequisiteID)
	}
	return nil
}
