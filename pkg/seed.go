package pkg

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/SAP-F-2025/training-service/internal/auth"
	"github.com/SAP-F-2025/training-service/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type SeedOptions struct {
	AdminEmail    string
	AdminPassword string
}

// Seed inserts the default catalog and an admin account. Each group is only
// written when its table is empty, and the admin only when its email is free,
// so running it twice changes nothing.
func Seed(ctx context.Context, db *gorm.DB, opts SeedOptions, logger *slog.Logger) error {
	db = db.WithContext(ctx)

	levels := []models.Level{{Name: "Basic"}, {Name: "Intermediate"}, {Name: "Advanced"}}
	if err := seedIfEmpty(db, &models.Level{}, &levels, "levels", logger); err != nil {
		return err
	}

	departments := []models.Department{
		{Name: "Governance", Description: strPtr("Governance team trainings")},
		{Name: "System Operations", Description: strPtr("System operations team trainings")},
		{Name: "Red Team", Description: strPtr("Red team trainings")},
		{Name: "Incident Response", Description: strPtr("Incident response team trainings")},
	}
	if err := seedIfEmpty(db, &models.Department{}, &departments, "departments", logger); err != nil {
		return err
	}

	trainings := []models.Training{
		{Code: "CS101", Title: "Introduction to Cyber Security", Description: strPtr("Cyber security fundamentals")},
		{Code: "CS201", Title: "Network Security", Description: strPtr("Network security topics")},
		{Code: "CS301", Title: "Advanced Intrusion Detection", Description: strPtr("Advanced attack detection techniques")},
		{Code: "MG101", Title: "Project Management", Description: strPtr("Project management fundamentals")},
	}
	if err := seedIfEmpty(db, &models.Training{}, &trainings, "trainings", logger); err != nil {
		return err
	}

	return seedAdmin(db, opts, logger)
}

func seedIfEmpty[T any](db *gorm.DB, model interface{}, rows *[]T, name string, logger *slog.Logger) error {
	var count int64
	if err := db.Model(model).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to count %s: %w", name, err)
	}
	if count > 0 {
		logger.Info("Seed skipped, table not empty", "table", name, "rows", count)
		return nil
	}
	if err := db.Omit(clause.Associations).Create(rows).Error; err != nil {
		return fmt.Errorf("failed to seed %s: %w", name, err)
	}
	logger.Info("Seeded table", "table", name, "rows", len(*rows))
	return nil
}

func seedAdmin(db *gorm.DB, opts SeedOptions, logger *slog.Logger) error {
	var existing models.User
	err := db.Where("email = ?", opts.AdminEmail).First(&existing).Error
	if err == nil {
		logger.Info("Seed skipped, admin exists", "email", opts.AdminEmail)
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("failed to look up admin: %w", err)
	}

	hash, err := auth.HashPassword(opts.AdminPassword)
	if err != nil {
		return fmt.Errorf("failed to hash admin password: %w", err)
	}

	admin := models.User{
		FullName:     "System Administrator",
		Email:        opts.AdminEmail,
		PasswordHash: hash,
		Role:         models.RoleAdmin,
		IsActive:     true,
	}
	var first models.Department
	if err := db.Order("id").First(&first).Error; err == nil {
		admin.DepartmentID = &first.ID
	}

	if err := db.Omit(clause.Associations).Create(&admin).Error; err != nil {
		return fmt.Errorf("failed to seed admin: %w", err)
	}
	logger.Info("Seeded admin account", "email", opts.AdminEmail)
	return nil
}

func strPtr(s string) *string { return &s }
