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

type levelService struct {
	repo      repositories.Repository
	audit     AuditService
	cache     cache.CacheService
	logger    *slog.Logger
	validator *validator.Validator
}

func NewLevelService(
	repo repositories.Repository,
	audit AuditService,
	cacheService cache.CacheService,
	logger *slog.Logger,
	validator *validator.Validator,
) LevelService {
	return &levelService{
		repo:      repo,
		audit:     audit,
		cache:     cacheService,
		logger:    logger,
		validator: validator,
	}
}

func (s *levelService) List(ctx context.Context, p Principal) ([]*models.Level, error) {
	if err := Authorize(p, Authenticated); err != nil {
		return nil, err
	}

	levels, err := s.repo.Level().List(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list levels: %w", err)
	}
	return levels, nil
}

func (s *levelService) Get(ctx context.Context, p Principal, id uint) (*models.Level, error) {
	if err := Authorize(p, AdminOnly); err != nil {
		return nil, err
	}

	level, err := s.repo.Level().GetByID(ctx, nil, id)
	if err != nil {
		return nil, mapNotFound(err, ErrLevelNotFound, "get level")
	}
	return level, nil
}

func (s *levelService) Create(ctx context.Context, p Principal, req *LevelRequest) (*models.Level, error) {
	if err := Authorize(p, AdminOnly); err != nil {
		return nil, err
	}
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	name := strings.TrimSpace(req.Name)
	if err := s.checkNameFree(ctx, name, nil); err != nil {
		return nil, err
	}

	level := &models.Level{Name: name}
	err := inTx(ctx, s.repo, func(tx *gorm.DB) error {
		if err := s.repo.Level().Create(ctx, tx, level); err != nil {
			return duplicateAsValidation(err, "name", "Level name already exists", name)
		}
		return s.audit.Record(ctx, tx, p, AuditEntry{
			Event:       models.AuditLevelCreated,
			TargetType:  "level",
			TargetID:    level.ID,
			Description: fmt.Sprintf("created level %s", level.Name),
		})
	})
	if err != nil {
		return nil, err
	}
	return level, nil
}

func (s *levelService) Update(ctx context.Context, p Principal, id uint, req *LevelRequest) (*models.Level, error) {
	if err := Authorize(p, AdminOnly); err != nil {
		return nil, err
	}
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	level, err := s.repo.Level().GetByID(ctx, nil, id)
	if err != nil {
		return nil, mapNotFound(err, ErrLevelNotFound, "get level")
	}

	name := strings.TrimSpace(req.Name)
	if err := s.checkNameFree(ctx, name, &id); err != nil {
		return nil, err
	}
	level.Name = name

	err = inTx(ctx, s.repo, func(tx *gorm.DB) error {
		if err := s.repo.Level().Update(ctx, tx, level); err != nil {
			return duplicateAsValidation(err, "name", "Level name already exists", name)
		}
		return s.audit.Record(ctx, tx, p, AuditEntry{
			Event:       models.AuditLevelUpdated,
			TargetType:  "level",
			TargetID:    level.ID,
			Description: fmt.Sprintf("renamed level to %s", level.Name),
		})
	})
	if err != nil {
		return nil, err
	}

	// Reports and career paths show level names.
	invalidateReports(ctx, s.cache, s.logger)
	return level, nil
}

// Delete refuses levels that training sections still reference.
func (s *levelService) Delete(ctx context.Context, p Principal, id uint) error {
	if err := Authorize(p, AdminOnly); err != nil {
		return err
	}

	level, err := s.repo.Level().GetByID(ctx, nil, id)
	if err != nil {
		return mapNotFound(err, ErrLevelNotFound, "get level")
	}

	return inTx(ctx, s.repo, func(tx *gorm.DB) error {
		inUse, err := s.repo.TrainingSection().CountByLevel(ctx, tx, id)
		if err != nil {
			return fmt.Errorf("failed to count level usage: %w", err)
		}
		if inUse > 0 {
			return ErrLevelInUse
		}
		if err := s.repo.Level().Delete(ctx, tx, id); err != nil {
			return mapNotFound(err, ErrLevelNotFound, "delete level")
		}
		return s.audit.Record(ctx, tx, p, AuditEntry{
			Event:       models.AuditLevelDeleted,
			TargetType:  "level",
			TargetID:    id,
			Description: fmt.Sprintf("deleted level %s", level.Name),
		})
	})
}

func (s *levelService) checkNameFree(ctx context.Context, name string, excludeID *uint) error {
	taken, err := s.repo.Level().ExistsByName(ctx, nil, name, excludeID)
	if err != nil {
		return fmt.Errorf("failed to check level name: %w", err)
	}
	if taken {
		return fieldError("name", "Level name already exists", name)
	}
	return nil
}
