package services

import (
	"time"

	"github.com/SAP-F-2025/training-service/internal/models"
)

// ===== AUTH REQUESTS =====

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type RegisterRequest struct {
	FullName     string `json:"full_name" validate:"required,min=2,max=100"`
	Email        string `json:"email" validate:"required,email,max=120"`
	Password     string `json:"password" validate:"required,min=6"`
	DepartmentID *uint  `json:"department_id"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=6"`
}

func (r *ChangePasswordRequest) CheckRules() ValidationErrors {
	if r.CurrentPassword == r.NewPassword {
		return fieldError("new_password", "New password must differ from the current password", nil)
	}
	return nil
}

// ===== USER REQUESTS =====

type CreateUserRequest struct {
	FullName     string          `json:"full_name" validate:"required,min=2,max=100"`
	Email        string          `json:"email" validate:"required,email,max=120"`
	Role         models.UserRole `json:"role" validate:"required,user_role"`
	DepartmentID *uint           `json:"department_id"`
	Password     string          `json:"password" validate:"omitempty,min=6"`
	IsActive     *bool           `json:"is_active"`
}

type UpdateUserRequest struct {
	FullName     string          `json:"full_name" validate:"required,min=2,max=100"`
	Email        string          `json:"email" validate:"required,email,max=120"`
	Role         models.UserRole `json:"role" validate:"required,user_role"`
	DepartmentID *uint           `json:"department_id"`
	IsActive     bool            `json:"is_active"`
}

type SetPasswordRequest struct {
	Password string `json:"password" validate:"required,min=6"`
}

type UpdateProfileRequest struct {
	FullName     string `json:"full_name" validate:"required,min=2,max=100"`
	Email        string `json:"email" validate:"required,email,max=120"`
	DepartmentID *uint  `json:"department_id"`
}

type UserListResponse struct {
	Users []*models.User `json:"users"`
	Total int64          `json:"total"`
}

// ===== DEPARTMENT / LEVEL REQUESTS =====

type DepartmentRequest struct {
	Name        string  `json:"name" validate:"required,min=2,max=100"`
	Description *string `json:"description" validate:"omitempty,max=500"`
}

type LevelRequest struct {
	Name string `json:"name" validate:"required,min=2,max=50"`
}

// ===== TRAINING REQUESTS =====

type TrainingRequest struct {
	Code        string  `json:"code" validate:"required,min=2,max=20,training_code"`
	Title       string  `json:"title" validate:"required,min=5,max=200"`
	Description *string `json:"description" validate:"omitempty,max=1000"`
	// 0 or nil means no prerequisite.
	PrerequisiteID *uint `json:"prerequisite_id"`
}

type TrainingListResponse struct {
	Trainings []*models.Training `json:"trainings"`
	Total     int64              `json:"total"`
}

type TrainingSectionRequest struct {
	TrainingID   uint `json:"training_id" validate:"required"`
	DepartmentID uint `json:"department_id" validate:"required"`
	LevelID      uint `json:"level_id" validate:"required"`
}

// ===== ASSIGNMENTS =====

type AssignTrainingsRequest struct {
	UserID      uint   `json:"user_id"`
	TrainingIDs []uint `json:"training_ids" validate:"required,min=1,dive,gt=0"`
}

type AssignResult struct {
	UserID   uint                   `json:"user_id"`
	Created  []*models.UserTraining `json:"created"`
	Skipped  []uint                 `json:"skipped"`
	Assigned int                    `json:"assigned"`
}

type AssignmentListResponse struct {
	Assignments []*models.UserTraining `json:"assignments"`
	Total       int64                  `json:"total"`
}

// TrainingDetail is one assigned training as seen by its user, with every
// department section that offers it.
type TrainingDetail struct {
	Assignment *models.UserTraining      `json:"assignment"`
	Sections   []*models.TrainingSection `json:"sections"`
}

// ===== REPORTS =====

type DepartmentReportRow struct {
	SectionID      uint    `json:"section_id"`
	TrainingID     uint    `json:"training_id"`
	TrainingCode   string  `json:"training_code"`
	TrainingTitle  string  `json:"training_title"`
	LevelName      string  `json:"level_name"`
	AssignedCount  int64   `json:"assigned_count"`
	CompletedCount int64   `json:"completed_count"`
	CompletionRate float64 `json:"completion_rate"`
}

type DepartmentReport struct {
	DepartmentID   uint                  `json:"department_id"`
	DepartmentName string                `json:"department_name"`
	Rows           []DepartmentReportRow `json:"rows"`
	GeneratedAt    time.Time             `json:"generated_at"`
}

type Dashboard struct {
	Total               int64                  `json:"total"`
	Completed           int64                  `json:"completed"`
	InProgress          int64                  `json:"in_progress"`
	NotStarted          int64                  `json:"not_started"`
	InProgressTrainings []*models.UserTraining `json:"in_progress_trainings"`
	CompletedTrainings  []*models.UserTraining `json:"completed_trainings"`
}

type CareerLevel struct {
	LevelID   uint   `json:"level_id"`
	LevelName string `json:"level_name"`
	Total     int    `json:"total"`
	Completed int    `json:"completed"`
}

type CareerPath struct {
	DepartmentID       uint                     `json:"department_id"`
	DepartmentName     string                   `json:"department_name"`
	Levels             []CareerLevel            `json:"levels"`
	Sections           []models.TrainingSection `json:"sections"`
	CompletedTrainings []*models.UserTraining   `json:"completed_trainings"`
}

type AdminOverview struct {
	TotalUsers           int64              `json:"total_users"`
	TotalTrainings       int64              `json:"total_trainings"`
	TotalDepartments     int64              `json:"total_departments"`
	CompletedAssignments int64              `json:"completed_assignments"`
	RecentTrainings      []*models.Training `json:"recent_trainings"`
	RecentUsers          []*models.User     `json:"recent_users"`
}

type AuditLogListResponse struct {
	Entries []*models.AuditLog `json:"entries"`
	Total   int64              `json:"total"`
}
