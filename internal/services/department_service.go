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

type departmentService struct {
	repo      repositories.Repository
	audit     AuditService
	cache     cache.CacheService
	logger    *slog.Logger
	validator *validator.Validator
}

func NewDepartmentService(
	repo repositories.Repository,
	audit AuditService,
	cacheService cache.CacheService,
	logger *slog.Logger,
	validator *validator.Validator,
) DepartmentService {
	return &departmentService{
		repo:      repo,
		audit:     audit,
		cache:     cacheService,
		logger:    logger,
		validator: validator,
	}
}

// List needs no sign-in: the registration form offers departments.
func (s *departmentService) List(ctx context.Context, p Principal) ([]*models.Department, error) {
	departments, err := s.repo.Department().List(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list departments: %w", err)
	}
	return departments, nil
}

func (s *departmentService) Get(ctx context.Context, p Principal, id uint) (*models.Department, error) {
	if err := Authorize(p, AdminOnly); err != nil {
		return nil, err
	}

	department, err := s.repo.Department().GetByIDWithSections(ctx, nil, id)
	if err != nil {
		return nil, mapNotFound(err, ErrDepartmentNotFound, "get department")
	}
	return department, nil
}

func (s *departmentService) Create(ctx context.Context, p Principal, req *DepartmentRequest) (*models.Department, error) {
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

	department := &models.Department{
		Name:        name,
		Description: req.Description,
	}

	err := inTx(ctx, s.repo, func(tx *gorm.DB) error {
		if err := s.repo.Department().Create(ctx, tx, department); err != nil {
			return duplicateAsValidation(err, "name", "Department name already exists", name)
		}
		return s.audit.Record(ctx, tx, p, AuditEntry{
			Event:       models.AuditDepartmentCreated,
			TargetType:  "department",
			TargetID:    department.ID,
			Description: fmt.Sprintf("created department %s", department.Name),
		})
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Department created", "department_id", department.ID, "user_id", p.UserID)
	return department, nil
}

func (s *departmentService) Update(ctx context.Context, p Principal, id uint, req *DepartmentRequest) (*models.Department, error) {
	if err := Authorize(p, AdminOnly); err != nil {
		return nil, err
	}
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	department, err := s.repo.Department().GetByID(ctx, nil, id)
	if err != nil {
		return nil, mapNotFound(err, ErrDepartmentNotFound, "get department")
	}

	name := strings.TrimSpace(req.Name)
	if err := s.checkNameFree(ctx, name, &id); err != nil {
		return nil, err
	}

	department.Name = name
	department.Description = req.Description

	err = inTx(ctx, s.repo, func(tx *gorm.DB) error {
		if err := s.repo.Department().Update(ctx, tx, department); err != nil {
			return duplicateAsValidation(err, "name", "Department name already exists", name)
		}
		return s.audit.Record(ctx, tx, p, AuditEntry{
			Event:       models.AuditDepartmentUpdated,
			TargetType:  "department",
			TargetID:    department.ID,
			Description: fmt.Sprintf("updated department %s", department.Name),
		})
	})
	if err != nil {
		return nil, err
	}

	invalidateReports(ctx, s.cache, s.logger)
	return department, nil
}

// Delete removes the department with its training sections. Members stay,
// with their department cleared.
func (s *departmentService) Delete(ctx context.Context, p Principal, id uint) error {
	if err := Authorize(p, AdminOnly); err != nil {
		return err
	}

	department, err := s.repo.Department().GetByID(ctx, nil, id)
	if err != nil {
		return mapNotFound(err, ErrDepartmentNotFound, "get department")
	}

	err = inTx(ctx, s.repo, func(tx *gorm.DB) error {
		sections, err := s.repo.TrainingSection().DeleteByDepartment(ctx, tx, id)
		if err != nil {
			return fmt.Errorf("failed to delete training sections: %w", err)
		}
		if err := s.repo.User().ClearDepartment(ctx, tx, id); err != nil {
			return fmt.Errorf("failed to detach department users: %w", err)
		}
		if err := s.repo.Department().Delete(ctx, tx, id); err != nil {
			return mapNotFound(err, ErrDepartmentNotFound, "delete department")
		}
		return s.audit.Record(ctx, tx, p, AuditEntry{
			Event:       models.AuditDepartmentDeleted,
			TargetType:  "department",
			TargetID:    id,
			Description: fmt.Sprintf("deleted department %s", department.Name),
			Metadata:    map[string]interface{}{"sections_removed": sections},
		})
	})
	if err != nil {
		return err
	}

	invalidateReports(ctx, s.cache, s.logger)
	s.logger.Info("Department deleted", "department_id", id, "user_id", p.UserID)
	return nil
}

func (s *departmentService) checkNameFree(ctx context.Context, name string, excludeID *uint) error {
	taken, err := s.repo.Department().ExistsByName(ctx, nil, name, excludeID)
	if err != nil {
		return fmt.Errorf("failed to check department name: %w", err)
	}
	if taken {
		return fieldError("name", "Department name already exists", name)
	}
	return nil
}
