// Package testutil holds fixtures shared by package tests.
package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/SAP-F-2025/training-service/internal/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

var dbCounter atomic.Int64

// NewTestDB opens a private in-memory SQLite database with every table migrated.
func NewTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:testdb%d?mode=memory&cache=shared&_foreign_keys=1", dbCounter.Add(1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	if err := db.AutoMigrate(models.AllModels()...); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to get sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	return db
}

func strPtr(s string) *string { return &s }

// SeedDepartment inserts a department with the given name.
func SeedDepartment(t *testing.T, db *gorm.DB, name string) *models.Department {
	t.Helper()
	d := &models.Department{Name: name, Description: strPtr(name + " department")}
	if err := db.Create(d).Error; err != nil {
		t.Fatalf("failed to seed department: %v", err)
	}
	return d
}

func SeedLevel(t *testing.T, db *gorm.DB, name string) *models.Level {
	t.Helper()
	l := &models.Level{Name: name}
	if err := db.Create(l).Error; err != nil {
		t.Fatalf("failed to seed level: %v", err)
	}
	return l
}

func SeedTraining(t *testing.T, db *gorm.DB, code, title string) *models.Training {
	t.Helper()
	tr := &models.Training{Code: code, Title: title}
	if err := db.Create(tr).Error; err != nil {
		t.Fatalf("failed to seed training: %v", err)
	}
	return tr
}

// SeedUser inserts an active user. The password hash is a placeholder; use the
// auth service when a test needs to sign in.
func SeedUser(t *testing.T, db *gorm.DB, email string, role models.UserRole, departmentID *uint) *models.User {
	t.Helper()
	u := &models.User{
		FullName:     "User " + email,
		Email:        email,
		PasswordHash: "x",
		Role:         role,
		DepartmentID: departmentID,
		IsActive:     true,
	}
	if err := db.Omit(clause.Associations).Create(u).Error; err != nil {
		t.Fatalf("failed to seed user: %v", err)
	}
	return u
}

func SeedSection(t *testing.T, db *gorm.DB, trainingID, departmentID, levelID uint) *models.TrainingSection {
	t.Helper()
	s := &models.TrainingSection{TrainingID: trainingID, DepartmentID: departmentID, LevelID: levelID}
	if err := db.Omit(clause.Associations).Create(s).Error; err != nil {
		t.Fatalf("failed to seed section: %v", err)
	}
	return s
}
