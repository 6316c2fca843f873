package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/SAP-F-2025/training-service/internal/auth"
	"github.com/SAP-F-2025/training-service/internal/cache"
	"github.com/SAP-F-2025/training-service/internal/models"
	"github.com/SAP-F-2025/training-service/internal/repositories"
	"github.com/SAP-F-2025/training-service/internal/validator"
	"gorm.io/gorm"
)

type userService struct {
	repo            repositories.Repository
	audit           AuditService
	cache           cache.CacheService
	logger          *slog.Logger
	svcLogger       *ServiceLogger
	validator       *validator.Validator
	defaultPassword string
}

func NewUserService(
	repo repositories.Repository,
	audit AuditService,
	cacheService cache.CacheService,
	logger *slog.Logger,
	validator *validator.Validator,
	defaultPassword string,
) UserService {
	return &userService{
		repo:            repo,
		audit:           audit,
		cache:           cacheService,
		logger:          logger,
		svcLogger:       NewServiceLogger(logger, LogConfig{Service: "training-service", Component: "users"}),
		validator:       validator,
		defaultPassword: defaultPassword,
	}
}

// ===== ADMIN OPERATIONS =====

func (s *userService) List(ctx context.Context, p Principal, filters repositories.UserFilters) (*UserListResponse, error) {
	if err := Authorize(p, AdminOnly); err != nil {
		return nil, err
	}

	users, total, err := s.repo.User().List(ctx, nil, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return &UserListResponse{Users: users, Total: total}, nil
}

func (s *userService) Get(ctx context.Context, p Principal, id uint) (*models.User, error) {
	if err := Authorize(p, SelfOrAdmin(id)); err != nil {
		return nil, err
	}

	user, err := s.repo.User().GetByID(ctx, nil, id)
	if err != nil {
		return nil, mapNotFound(err, ErrUserNotFound, "get user")
	}
	return user, nil
}

func (s *userService) Create(ctx context.Context, p Principal, req *CreateUserRequest) (user *models.User, err error) {
	op := s.svcLogger.WithOperation(ctx, "create_user", p.UserID)
	defer func() {
		var id uint
		if user != nil {
			id = user.ID
		}
		op.LogResult(id, "user", err)
	}()

	if err := Authorize(p, AdminOnly); err != nil {
		return nil, err
	}
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	email := normalizeEmail(req.Email)
	if err := s.checkEmailFree(ctx, email, nil); err != nil {
		return nil, err
	}
	departmentID := optionalID(req.DepartmentID)
	if err := checkDepartment(ctx, s.repo, departmentID); err != nil {
		return nil, err
	}

	password := req.Password
	if password == "" {
		password = s.defaultPassword
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	isActive := true
	if req.IsActive != nil {
		isActive = *req.IsActive
	}

	user = &models.User{
		FullName:     req.FullName,
		Email:        email,
		PasswordHash: hash,
		Role:         req.Role,
		DepartmentID: departmentID,
		IsActive:     isActive,
	}

	err = inTx(ctx, s.repo, func(tx *gorm.DB) error {
		if err := s.repo.User().Create(ctx, tx, user); err != nil {
			return duplicateAsValidation(err, "email", "Email is already registered", email)
		}
		return s.audit.Record(ctx, tx, p, AuditEntry{
			Event:       models.AuditUserCreated,
			TargetType:  "user",
			TargetID:    user.ID,
			Description: fmt.Sprintf("created user %s", user.Email),
			Metadata:    map[string]interface{}{"role": user.Role, "default_password": req.Password == ""},
		})
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (s *userService) Update(ctx context.Context, p Principal, id uint, req *UpdateUserRequest) (user *models.User, err error) {
	op := s.svcLogger.WithOperation(ctx, "update_user", p.UserID)
	defer func() { op.LogResult(id, "user", err) }()

	if err := Authorize(p, AdminOnly); err != nil {
		return nil, err
	}
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	user, err = s.repo.User().GetByID(ctx, nil, id)
	if err != nil {
		return nil, mapNotFound(err, ErrUserNotFound, "get user")
	}

	email := normalizeEmail(req.Email)
	if err := s.checkEmailFree(ctx, email, &id); err != nil {
		return nil, err
	}
	departmentID := optionalID(req.DepartmentID)
	if err := checkDepartment(ctx, s.repo, departmentID); err != nil {
		return nil, err
	}

	user.FullName = req.FullName
	user.Email = email
	user.Role = req.Role
	user.DepartmentID = departmentID
	user.IsActive = req.IsActive
	user.Department = nil

	err = inTx(ctx, s.repo, func(tx *gorm.DB) error {
		if err := s.repo.User().Update(ctx, tx, user); err != nil {
			return duplicateAsValidation(err, "email", "Email is already registered", email)
		}
		return s.audit.Record(ctx, tx, p, AuditEntry{
			Event:       models.AuditUserUpdated,
			TargetType:  "user",
			TargetID:    user.ID,
			Description: fmt.Sprintf("updated user %s", user.Email),
			Metadata:    map[string]interface{}{"role": user.Role, "is_active": user.IsActive},
		})
	})
	if err != nil {
		return nil, err
	}
	return s.repo.User().GetByID(ctx, nil, id)
}

func (s *userService) SetPassword(ctx context.Context, p Principal, id uint, req *SetPasswordRequest) error {
	if err := Authorize(p, AdminOnly); err != nil {
		return err
	}
	if err := s.validator.Validate(req); err != nil {
		return err
	}

	user, err := s.repo.User().GetByID(ctx, nil, id)
	if err != nil {
		return mapNotFound(err, ErrUserNotFound, "get user")
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	user.PasswordHash = hash

	return inTx(ctx, s.repo, func(tx *gorm.DB) error {
		if err := s.repo.User().Update(ctx, tx, user); err != nil {
			return fmt.Errorf("failed to update password: %w", err)
		}
		return s.audit.Record(ctx, tx, p, AuditEntry{
			Event:       models.AuditPasswordChanged,
			TargetType:  "user",
			TargetID:    user.ID,
			Description: "password set by admin",
		})
	})
}

// Delete removes a user and their assignments. Nobody may delete their own
// account here, admins included.
func (s *userService) Delete(ctx context.Context, p Principal, id uint) (err error) {
	op := s.svcLogger.WithOperation(ctx, "delete_user", p.UserID)
	defer func() { op.LogResult(id, "user", err) }()

	if err := Authorize(p, AdminOnly); err != nil {
		return err
	}
	if p.UserID == id {
		return ErrCannotDeleteSelf
	}

	user, err := s.repo.User().GetByID(ctx, nil, id)
	if err != nil {
		return mapNotFound(err, ErrUserNotFound, "get user")
	}

	err = inTx(ctx, s.repo, func(tx *gorm.DB) error {
		removed, err := s.repo.UserTraining().DeleteByUser(ctx, tx, id)
		if err != nil {
			return fmt.Errorf("failed to delete user trainings: %w", err)
		}
		if err := s.repo.User().Delete(ctx, tx, id); err != nil {
			return mapNotFound(err, ErrUserNotFound, "delete user")
		}
		return s.audit.Record(ctx, tx, p, AuditEntry{
			Event:       models.AuditUserDeleted,
			TargetType:  "user",
			TargetID:    id,
			Description: fmt.Sprintf("deleted user %s", user.Email),
			Metadata:    map[string]interface{}{"assignments_removed": removed},
		})
	})
	if err != nil {
		return err
	}

	invalidateReports(ctx, s.cache, s.logger)
	return nil
}

// ===== SELF SERVICE =====

func (s *userService) GetProfile(ctx context.Context, p Principal) (*models.User, error) {
	if err := Authorize(p, Authenticated); err != nil {
		return nil, err
	}
	return s.Get(ctx, p, p.UserID)
}

func (s *userService) UpdateProfile(ctx context.Context, p Principal, req *UpdateProfileRequest) (*models.User, error) {
	if err := Authorize(p, Authenticated); err != nil {
		return nil, err
	}
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	user, err := s.repo.User().GetByID(ctx, nil, p.UserID)
	if err != nil {
		return nil, mapNotFound(err, ErrUserNotFound, "get user")
	}

	email := normalizeEmail(req.Email)
	if err := s.checkEmailFree(ctx, email, &user.ID); err != nil {
		return nil, err
	}
	departmentID := optionalID(req.DepartmentID)
	if err := checkDepartment(ctx, s.repo, departmentID); err != nil {
		return nil, err
	}

	user.FullName = req.FullName
	user.Email = email
	user.DepartmentID = departmentID
	user.Department = nil

	err = inTx(ctx, s.repo, func(tx *gorm.DB) error {
		if err := s.repo.User().Update(ctx, tx, user); err != nil {
			return duplicateAsValidation(err, "email", "Email is already registered", email)
		}
		return s.audit.Record(ctx, tx, p, AuditEntry{
			Event:       models.AuditUserUpdated,
			TargetType:  "user",
			TargetID:    user.ID,
			Description: "profile updated by owner",
		})
	})
	if err != nil {
		return nil, err
	}
	return s.repo.User().GetByID(ctx, nil, user.ID)
}

func (s *userService) checkEmailFree(ctx context.Context, email string, excludeID *uint) error {
	taken, err := s.repo.User().ExistsByEmail(ctx, nil, email, excludeID)
	if err != nil {
		return fmt.Errorf("failed to check email: %w", err)
	}
	if taken {
		return fieldError("email", "Email is already registered", email)
	}
	return nil
}
