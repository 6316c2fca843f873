package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/SAP-F-2025/training-service/internal/auth"
	"github.com/SAP-F-2025/training-service/internal/models"
	"github.com/SAP-F-2025/training-service/internal/repositories"
	"github.com/SAP-F-2025/training-service/internal/validator"
	"gorm.io/gorm"
)

type authService struct {
	repo      repositories.Repository
	audit     AuditService
	logger    *slog.Logger
	svcLogger *ServiceLogger
	validator *validator.Validator
}

func NewAuthService(repo repositories.Repository, audit AuditService, logger *slog.Logger, validator *validator.Validator) AuthService {
	return &authService{
		repo:      repo,
		audit:     audit,
		logger:    logger,
		svcLogger: NewServiceLogger(logger, LogConfig{Service: "training-service", Component: "auth"}),
		validator: validator,
	}
}

func (s *authService) Authenticate(ctx context.Context, req *LoginRequest) (*models.User, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	email := normalizeEmail(req.Email)
	user, err := s.repo.User().GetByEmail(ctx, nil, email)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			s.failedLogin(ctx, 0, email, "unknown email")
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	ok, err := auth.CheckPassword(req.Password, user.PasswordHash)
	if err != nil {
		return nil, fmt.Errorf("failed to check password: %w", err)
	}
	if !ok {
		s.failedLogin(ctx, user.ID, email, "wrong password")
		return nil, ErrInvalidCredentials
	}
	if !user.IsActive {
		s.failedLogin(ctx, user.ID, email, "inactive account")
		return nil, ErrInactiveUser
	}

	if auth.NeedsRehash(user.PasswordHash) {
		if hash, err := auth.HashPassword(req.Password); err == nil {
			user.PasswordHash = hash
			if err := s.repo.User().Update(ctx, nil, user); err != nil {
				s.logger.Warn("Failed to upgrade password hash", "user_id", user.ID, "error", err)
			}
		}
	}

	s.logger.Info("User authenticated", "user_id", user.ID)
	return user, nil
}

func (s *authService) failedLogin(ctx context.Context, userID uint, email, reason string) {
	s.svcLogger.WithOperation(ctx, "authenticate", userID).LogSecurity(
		SecurityEventFailedLogin,
		SecuritySeverityMedium,
		"login rejected",
		map[string]interface{}{"email": email, "reason": reason},
	)
}

func (s *authService) Register(ctx context.Context, req *RegisterRequest) (*models.User, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	email := normalizeEmail(req.Email)
	taken, err := s.repo.User().ExistsByEmail(ctx, nil, email, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}
	if taken {
		return nil, fieldError("email", "Email is already registered", email)
	}
	departmentID := optionalID(req.DepartmentID)
	if err := checkDepartment(ctx, s.repo, departmentID); err != nil {
		return nil, err
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	// Self-registration never grants an elevated role.
	user := &models.User{
		FullName:     req.FullName,
		Email:        email,
		PasswordHash: hash,
		Role:         models.RoleStaff,
		DepartmentID: departmentID,
		IsActive:     true,
	}

	err = inTx(ctx, s.repo, func(tx *gorm.DB) error {
		if err := s.repo.User().Create(ctx, tx, user); err != nil {
			return duplicateAsValidation(err, "email", "Email is already registered", email)
		}
		return s.audit.Record(ctx, tx, PrincipalFromUser(user), AuditEntry{
			Event:       models.AuditUserCreated,
			TargetType:  "user",
			TargetID:    user.ID,
			Description: "self-registration",
		})
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("User registered", "user_id", user.ID)
	return user, nil
}

func (s *authService) ChangePassword(ctx context.Context, p Principal, req *ChangePasswordRequest) error {
	if err := Authorize(p, Authenticated); err != nil {
		return err
	}
	if err := s.validator.Validate(req); err != nil {
		return err
	}

	user, err := s.repo.User().GetByID(ctx, nil, p.UserID)
	if err != nil {
		return mapNotFound(err, ErrUserNotFound, "get user")
	}

	ok, err := auth.CheckPassword(req.CurrentPassword, user.PasswordHash)
	if err != nil {
		return fmt.Errorf("failed to check password: %w", err)
	}
	if !ok {
		return fieldError("current_password", "Current password is incorrect", nil)
	}

	hash, err := auth.HashPassword(req.NewPassword)
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
			Description: "password changed by owner",
		})
	})
}

func (s *authService) CurrentPrincipal(ctx context.Context, userID uint) (Principal, error) {
	if userID == 0 {
		return Principal{}, nil
	}
	user, err := s.repo.User().GetByID(ctx, nil, userID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return Principal{}, nil
		}
		return Principal{}, fmt.Errorf("failed to load principal: %w", err)
	}
	if !user.IsActive {
		return Principal{}, nil
	}
	return PrincipalFromUser(user), nil
}

// checkDepartment accepts nil or an existing department id.
func checkDepartment(ctx context.Context, repo repositories.Repository, departmentID *uint) error {
	if departmentID == nil {
		return nil
	}
	ok, err := repo.Department().ExistsByID(ctx, nil, *departmentID)
	if err != nil {
		return fmt.Errorf("failed to check department: %w", err)
	}
	if !ok {
		return fieldError("department_id", "Department does not exist", *departmentID)
	}
	return nil
}
