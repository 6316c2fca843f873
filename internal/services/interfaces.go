package services

import (
	"context"

	"github.com/SAP-F-2025/training-service/internal/models"
	"github.com/SAP-F-2025/training-service/internal/repositories"
	"gorm.io/gorm"
)

// Every operation takes the acting Principal explicitly and checks it
// against its policies before touching the store.

type AuthService interface {
	Authenticate(ctx context.Context, req *LoginRequest) (*models.User, error)
	Register(ctx context.Context, req *RegisterRequest) (*models.User, error)
	ChangePassword(ctx context.Context, p Principal, req *ChangePasswordRequest) error
	// CurrentPrincipal resolves a session user id. Unknown or inactive users
	// resolve to the anonymous principal.
	CurrentPrincipal(ctx context.Context, userID uint) (Principal, error)
}

type UserService interface {
	List(ctx context.Context, p Principal, filters repositories.UserFilters) (*UserListResponse, error)
	Get(ctx context.Context, p Principal, id uint) (*models.User, error)
	Create(ctx context.Context, p Principal, req *CreateUserRequest) (*models.User, error)
	Update(ctx context.Context, p Principal, id uint, req *UpdateUserRequest) (*models.User, error)
	SetPassword(ctx context.Context, p Principal, id uint, req *SetPasswordRequest) error
	Delete(ctx context.Context, p Principal, id uint) error

	GetProfile(ctx context.Context, p Principal) (*models.User, error)
	UpdateProfile(ctx context.Context, p Principal, req *UpdateProfileRequest) (*models.User, error)
}

type DepartmentService interface {
	List(ctx context.Context, p Principal) ([]*models.Department, error)
	Get(ctx context.Context, p Principal, id uint) (*models.Department, error)
	Create(ctx context.Context, p Principal, req *DepartmentRequest) (*models.Department, error)
	Update(ctx context.Context, p Principal, id uint, req *DepartmentRequest) (*models.Department, error)
	Delete(ctx context.Context, p Principal, id uint) error
}

type LevelService interface {
	List(ctx context.Context, p Principal) ([]*models.Level, error)
	Get(ctx context.Context, p Principal, id uint) (*models.Level, error)
	Create(ctx context.Context, p Principal, req *LevelRequest) (*models.Level, error)
	Update(ctx context.Context, p Principal, id uint, req *LevelRequest) (*models.Level, error)
	Delete(ctx context.Context, p Principal, id uint) error
}

type TrainingService interface {
	List(ctx context.Context, p Principal, filters repositories.TrainingFilters) (*TrainingListResponse, error)
	Get(ctx context.Context, p Principal, id uint) (*models.Training, error)
	Create(ctx context.Context, p Principal, req *TrainingRequest) (*models.Training, error)
	Update(ctx context.Context, p Principal, id uint, req *TrainingRequest) (*models.Training, error)
	Delete(ctx context.Context, p Principal, id uint) error
}

type TrainingSectionService interface {
	List(ctx context.Context, p Principal, filters repositories.TrainingSectionFilters) ([]*models.TrainingSection, error)
	Create(ctx context.Context, p Principal, req *TrainingSectionRequest) (*models.TrainingSection, error)
	Delete(ctx context.Context, p Principal, id uint) error
}

type AssignmentService interface {
	// Assign links each training to the user, skipping pairs that already exist.
	Assign(ctx context.Context, p Principal, req *AssignTrainingsRequest) (*AssignResult, error)
	Start(ctx context.Context, p Principal, trainingID uint) (*models.UserTraining, error)
	Complete(ctx context.Context, p Principal, trainingID uint) (*models.UserTraining, error)

	ListForUser(ctx context.Context, p Principal, status *models.TrainingStatus) ([]*models.UserTraining, error)
	ListAll(ctx context.Context, p Principal, filters repositories.UserTrainingFilters) (*AssignmentListResponse, error)
	AssignedTrainingIDs(ctx context.Context, p Principal, userID uint) ([]uint, error)
	TrainingDetail(ctx context.Context, p Principal, trainingID uint) (*TrainingDetail, error)
}

type ReportService interface {
	DepartmentReport(ctx context.Context, p Principal, departmentID uint) (*DepartmentReport, error)
	ExportDepartmentReport(ctx context.Context, p Principal, departmentID uint) ([]byte, string, error)
	Dashboard(ctx context.Context, p Principal) (*Dashboard, error)
	CareerPath(ctx context.Context, p Principal) (*CareerPath, error)
	AdminOverview(ctx context.Context, p Principal) (*AdminOverview, error)

	// InvalidateReports drops every cached report.
	InvalidateReports(ctx context.Context)
}

type AuditService interface {
	// Record writes one trail entry inside tx.
	Record(ctx context.Context, tx *gorm.DB, p Principal, entry AuditEntry) error
	List(ctx context.Context, p Principal, filters repositories.AuditLogFilters) (*AuditLogListResponse, error)
}

type TrainingEventService interface {
	PublishAssigned(ctx context.Context, userID uint, trainingIDs []uint, assignedBy uint)
	PublishStarted(ctx context.Context, assignment *models.UserTraining)
	PublishCompleted(ctx context.Context, assignment *models.UserTraining)
}
