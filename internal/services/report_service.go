package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"time"

	"github.com/SAP-F-2025/training-service/internal/cache"
	"github.com/SAP-F-2025/training-service/internal/models"
	"github.com/SAP-F-2025/training-service/internal/repositories"
	"github.com/xuri/excelize/v2"
)

const recentItemsLimit = 5

type reportService struct {
	repo     repositories.Repository
	cache    cache.CacheService
	cacheTTL time.Duration
	logger   *slog.Logger
}

func NewReportService(repo repositories.Repository, cacheService cache.CacheService, cacheTTL time.Duration, logger *slog.Logger) ReportService {
	return &reportService{
		repo:     repo,
		cache:    cacheService,
		cacheTTL: cacheTTL,
		logger:   logger,
	}
}

// CompletionRate is completed/assigned as a percentage rounded to one
// decimal, and 0 when nothing is assigned.
func CompletionRate(completed, assigned int64) float64 {
	if assigned <= 0 {
		return 0
	}
	return math.Round(float64(completed)/float64(assigned)*1000) / 10
}

// DepartmentReport lists every section of the department with assignment
// counts for its training. Counts cover all users, not only department
// members.
func (s *reportService) DepartmentReport(ctx context.Context, p Principal, departmentID uint) (*DepartmentReport, error) {
	if err := Authorize(p, AdminOnly); err != nil {
		return nil, err
	}

	key := departmentReportKey(departmentID)
	var cached DepartmentReport
	err := s.cache.Get(ctx, key, &cached)
	switch {
	case err == nil:
		return &cached, nil
	case !errors.Is(err, cache.ErrCacheMiss):
		s.logger.Warn("Report cache read failed", "key", key, "error", err)
	}

	report, err := s.buildDepartmentReport(ctx, departmentID)
	if err != nil {
		return nil, err
	}

	if err := s.cache.Set(ctx, key, report, s.cacheTTL); err != nil {
		s.logger.Warn("Report cache write failed", "key", key, "error", err)
	}
	return report, nil
}

func (s *reportService) buildDepartmentReport(ctx context.Context, departmentID uint) (*DepartmentReport, error) {
	department, err := s.repo.Department().GetByIDWithSections(ctx, nil, departmentID)
	if err != nil {
		return nil, mapNotFound(err, ErrDepartmentNotFound, "get department")
	}

	trainingIDs := make([]uint, 0, len(department.Sections))
	for _, section := range department.Sections {
		trainingIDs = append(trainingIDs, section.TrainingID)
	}
	counts, err := s.repo.UserTraining().CountsByTrainings(ctx, nil, trainingIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to count assignments: %w", err)
	}

	report := &DepartmentReport{
		DepartmentID:   department.ID,
		DepartmentName: department.Name,
		Rows:           make([]DepartmentReportRow, 0, len(department.Sections)),
		GeneratedAt:    time.Now().UTC(),
	}
	for _, section := range department.Sections {
		c := counts[section.TrainingID]
		report.Rows = append(report.Rows, DepartmentReportRow{
			SectionID:      section.ID,
			TrainingID:     section.TrainingID,
			TrainingCode:   section.Training.Code,
			TrainingTitle:  section.Training.Title,
			LevelName:      section.Level.Name,
			AssignedCount:  c.Assigned,
			CompletedCount: c.Completed,
			CompletionRate: CompletionRate(c.Completed, c.Assigned),
		})
	}
	return report, nil
}

// ExportDepartmentReport renders the department report as an xlsx workbook.
func (s *reportService) ExportDepartmentReport(ctx context.Context, p Principal, departmentID uint) ([]byte, string, error) {
	report, err := s.DepartmentReport(ctx, p, departmentID)
	if err != nil {
		return nil, "", err
	}

	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Report"
	index, err := f.NewSheet(sheetName)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create Excel sheet: %w", err)
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, "", fmt.Errorf("failed to remove default sheet: %w", err)
	}

	headers := []string{"Training Code", "Training Title", "Level", "Assigned", "Completed", "Completion Rate (%)"}
	for i, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheetName, cell, header)
	}

	for rowIndex, row := range report.Rows {
		values := []interface{}{
			row.TrainingCode,
			row.TrainingTitle,
			row.LevelName,
			row.AssignedCount,
			row.CompletedCount,
			row.CompletionRate,
		}
		for colIndex, value := range values {
			cell, _ := excelize.CoordinatesToCellName(colIndex+1, rowIndex+2)
			f.SetCellValue(sheetName, cell, value)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, "", fmt.Errorf("failed to write Excel file: %w", err)
	}

	filename := fmt.Sprintf("department-%d-training-report.xlsx", report.DepartmentID)
	return buf.Bytes(), filename, nil
}

// Dashboard partitions the principal's assignments by status.
func (s *reportService) Dashboard(ctx context.Context, p Principal) (*Dashboard, error) {
	if err := Authorize(p, Authenticated); err != nil {
		return nil, err
	}

	counts, err := s.repo.UserTraining().StatusCountsByUser(ctx, nil, p.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to count assignments: %w", err)
	}

	dashboard := &Dashboard{
		Completed:  counts[models.StatusCompleted],
		InProgress: counts[models.StatusInProgress],
		NotStarted: counts[models.StatusNotStarted],
	}
	dashboard.Total = dashboard.Completed + dashboard.InProgress + dashboard.NotStarted

	userID := p.UserID
	inProgress := models.StatusInProgress
	dashboard.InProgressTrainings, _, err = s.repo.UserTraining().List(ctx, nil, repositories.UserTrainingFilters{
		UserID: &userID,
		Status: &inProgress,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list in-progress trainings: %w", err)
	}

	completed := models.StatusCompleted
	dashboard.CompletedTrainings, _, err = s.repo.UserTraining().List(ctx, nil, repositories.UserTrainingFilters{
		UserID: &userID,
		Status: &completed,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list completed trainings: %w", err)
	}
	return dashboard, nil
}

// CareerPath groups the sections of the principal's department by level and
// counts how many of them the principal has completed.
func (s *reportService) CareerPath(ctx context.Context, p Principal) (*CareerPath, error) {
	if err := Authorize(p, Authenticated); err != nil {
		return nil, err
	}
	if p.DepartmentID == nil {
		return nil, ErrNoDepartment
	}

	department, err := s.repo.Department().GetByIDWithSections(ctx, nil, *p.DepartmentID)
	if err != nil {
		return nil, mapNotFound(err, ErrDepartmentNotFound, "get department")
	}

	userID := p.UserID
	completedStatus := models.StatusCompleted
	completedRows, _, err := s.repo.UserTraining().List(ctx, nil, repositories.UserTrainingFilters{
		UserID: &userID,
		Status: &completedStatus,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list completed trainings: %w", err)
	}
	completed := make(map[uint]struct{}, len(completedRows))
	for _, row := range completedRows {
		completed[row.TrainingID] = struct{}{}
	}

	byLevel := make(map[uint]*CareerLevel)
	for _, section := range department.Sections {
		level, ok := byLevel[section.LevelID]
		if !ok {
			level = &CareerLevel{LevelID: section.LevelID, LevelName: section.Level.Name}
			byLevel[section.LevelID] = level
		}
		level.Total++
		if _, done := completed[section.TrainingID]; done {
			level.Completed++
		}
	}

	path := &CareerPath{
		DepartmentID:       department.ID,
		DepartmentName:     department.Name,
		Levels:             make([]CareerLevel, 0, len(byLevel)),
		Sections:           department.Sections,
		CompletedTrainings: completedRows,
	}
	for _, level := range byLevel {
		path.Levels = append(path.Levels, *level)
	}
	sort.Slice(path.Levels, func(i, j int) bool {
		return path.Levels[i].LevelID < path.Levels[j].LevelID
	})
	return path, nil
}

func (s *reportService) AdminOverview(ctx context.Context, p Principal) (*AdminOverview, error) {
	if err := Authorize(p, AdminOnly); err != nil {
		return nil, err
	}

	var (
		overview AdminOverview
		err      error
	)
	if overview.TotalUsers, err = s.repo.User().Count(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to count users: %w", err)
	}
	if overview.TotalTrainings, err = s.repo.Training().Count(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to count trainings: %w", err)
	}
	if overview.TotalDepartments, err = s.repo.Department().Count(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to count departments: %w", err)
	}
	if overview.CompletedAssignments, err = s.repo.UserTraining().CountByStatus(ctx, nil, models.StatusCompleted); err != nil {
		return nil, fmt.Errorf("failed to count completed assignments: %w", err)
	}
	if overview.RecentTrainings, err = s.repo.Training().GetRecent(ctx, nil, recentItemsLimit); err != nil {
		return nil, fmt.Errorf("failed to load recent trainings: %w", err)
	}
	if overview.RecentUsers, err = s.repo.User().GetRecent(ctx, nil, recentItemsLimit); err != nil {
		return nil, fmt.Errorf("failed to load recent users: %w", err)
	}
	return &overview, nil
}

func (s *reportService) InvalidateReports(ctx context.Context) {
	invalidateReports(ctx, s.cache, s.logger)
}
