package services

import (
	"bytes"
	"context"
	"testing"

	"github.com/SAP-F-2025/training-service/internal/models"
	"github.com/SAP-F-2025/training-service/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestCompletionRate(t *testing.T) {
	tests := []struct {
		completed, assigned int64
		want                float64
	}{
		{0, 0, 0},
		{1, 2, 50.0},
		{1, 3, 33.3},
		{2, 3, 66.7},
		{3, 3, 100},
		{0, 5, 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, CompletionRate(tt.completed, tt.assigned), "%d/%d", tt.completed, tt.assigned)
	}
}

func TestReportService_DepartmentReport(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	dept := testutil.SeedDepartment(t, env.db, "Engineering")
	level := testutil.SeedLevel(t, env.db, "Basic")
	cs101 := testutil.SeedTraining(t, env.db, "CS101", "Intro to Computing")
	testutil.SeedSection(t, env.db, cs101.ID, dept.ID, level.ID)

	// Neither user belongs to the department; counts are not scoped to it.
	u1 := env.staff(t, "u1@example.com", nil)
	u2 := env.staff(t, "u2@example.com", nil)
	for _, u := range []Principal{u1, u2} {
		_, err := env.services.Assignment().Assign(ctx, env.admin,
			&AssignTrainingsRequest{UserID: u.UserID, TrainingIDs: []uint{cs101.ID}})
		require.NoError(t, err)
	}
	_, err := env.services.Assignment().Start(ctx, u1, cs101.ID)
	require.NoError(t, err)
	_, err = env.services.Assignment().Complete(ctx, u1, cs101.ID)
	require.NoError(t, err)

	report, err := env.services.Report().DepartmentReport(ctx, env.admin, dept.ID)
	require.NoError(t, err)
	require.Len(t, report.Rows, 1)
	row := report.Rows[0]
	assert.Equal(t, "CS101", row.TrainingCode)
	assert.Equal(t, "Basic", row.LevelName)
	assert.Equal(t, int64(2), row.AssignedCount)
	assert.Equal(t, int64(1), row.CompletedCount)
	assert.Equal(t, 50.0, row.CompletionRate)
}

func TestReportService_DepartmentReportWithoutAssignments(t *testing.T) {
	env := newTestEnv(t)
	dept := testutil.SeedDepartment(t, env.db, "Engineering")
	level := testutil.SeedLevel(t, env.db, "Basic")
	tr := testutil.SeedTraining(t, env.db, "CS101", "Intro to Computing")
	testutil.SeedSection(t, env.db, tr.ID, dept.ID, level.ID)

	report, err := env.services.Report().DepartmentReport(context.Background(), env.admin, dept.ID)
	require.NoError(t, err)
	require.Len(t, report.Rows, 1)
	assert.Equal(t, int64(0), report.Rows[0].AssignedCount)
	assert.Equal(t, 0.0, report.Rows[0].CompletionRate)
}

func TestReportService_DepartmentReportCache(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	dept := testutil.SeedDepartment(t, env.db, "Engineering")
	level := testutil.SeedLevel(t, env.db, "Basic")
	tr := testutil.SeedTraining(t, env.db, "CS101", "Intro to Computing")
	testutil.SeedSection(t, env.db, tr.ID, dept.ID, level.ID)
	user := env.staff(t, "u@example.com", nil)

	_, err := env.services.Report().DepartmentReport(ctx, env.admin, dept.ID)
	require.NoError(t, err)
	assert.True(t, env.cache.has(departmentReportKey(dept.ID)))

	_, err = env.services.Assignment().Assign(ctx, env.admin,
		&AssignTrainingsRequest{UserID: user.UserID, TrainingIDs: []uint{tr.ID}})
	require.NoError(t, err)
	assert.False(t, env.cache.has(departmentReportKey(dept.ID)), "assignment invalidates reports")

	report, err := env.services.Report().DepartmentReport(ctx, env.admin, dept.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), report.Rows[0].AssignedCount)
}

func TestReportService_DepartmentReportAccess(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	dept := testutil.SeedDepartment(t, env.db, "Engineering")
	user := env.staff(t, "u@example.com", &dept.ID)

	_, err := env.services.Report().DepartmentReport(ctx, user, dept.ID)
	assert.True(t, IsForbidden(err))

	_, err = env.services.Report().DepartmentReport(ctx, env.admin, 9999)
	assert.ErrorIs(t, err, ErrDepartmentNotFound)
}

func TestReportService_ExportDepartmentReport(t *testing.T) {
	env := newTestEnv(t)
	dept := testutil.SeedDepartment(t, env.db, "Engineering")
	level := testutil.SeedLevel(t, env.db, "Basic")
	tr := testutil.SeedTraining(t, env.db, "CS101", "Intro to Computing")
	testutil.SeedSection(t, env.db, tr.ID, dept.ID, level.ID)

	data, filename, err := env.services.Report().ExportDepartmentReport(context.Background(), env.admin, dept.ID)
	require.NoError(t, err)
	assert.Contains(t, filename, ".xlsx")

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Report")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Training Code", rows[0][0])
	assert.Equal(t, "CS101", rows[1][0])
	assert.Equal(t, "Basic", rows[1][2])
}

func TestReportService_Dashboard(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	a := testutil.SeedTraining(t, env.db, "CS101", "Intro to Computing")
	b := testutil.SeedTraining(t, env.db, "CS201", "Data Structures")
	c := testutil.SeedTraining(t, env.db, "CS301", "Algorithms Design")
	user := env.staff(t, "u@example.com", nil)

	_, err := env.services.Assignment().Assign(ctx, env.admin,
		&AssignTrainingsRequest{UserID: user.UserID, TrainingIDs: []uint{a.ID, b.ID, c.ID}})
	require.NoError(t, err)
	_, err = env.services.Assignment().Start(ctx, user, a.ID)
	require.NoError(t, err)
	_, err = env.services.Assignment().Complete(ctx, user, a.ID)
	require.NoError(t, err)
	_, err = env.services.Assignment().Start(ctx, user, b.ID)
	require.NoError(t, err)

	dashboard, err := env.services.Report().Dashboard(ctx, user)
	require.NoError(t, err)
	assert.Equal(t, int64(3), dashboard.Total)
	assert.Equal(t, int64(1), dashboard.Completed)
	assert.Equal(t, int64(1), dashboard.InProgress)
	assert.Equal(t, int64(1), dashboard.NotStarted)
	require.Len(t, dashboard.CompletedTrainings, 1)
	assert.Equal(t, a.ID, dashboard.CompletedTrainings[0].TrainingID)
	require.Len(t, dashboard.InProgressTrainings, 1)
	assert.Equal(t, b.ID, dashboard.InProgressTrainings[0].TrainingID)

	_, err = env.services.Report().Dashboard(ctx, Principal{})
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestReportService_CareerPath(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	dept := testutil.SeedDepartment(t, env.db, "Engineering")
	other := testutil.SeedDepartment(t, env.db, "Sales")
	basic := testutil.SeedLevel(t, env.db, "Basic")
	advanced := testutil.SeedLevel(t, env.db, "Advanced")
	cs101 := testutil.SeedTraining(t, env.db, "CS101", "Intro to Computing")
	cs201 := testutil.SeedTraining(t, env.db, "CS201", "Data Structures")
	cs301 := testutil.SeedTraining(t, env.db, "CS301", "Algorithms Design")
	testutil.SeedSection(t, env.db, cs101.ID, dept.ID, basic.ID)
	testutil.SeedSection(t, env.db, cs201.ID, dept.ID, basic.ID)
	testutil.SeedSection(t, env.db, cs301.ID, dept.ID, advanced.ID)
	testutil.SeedSection(t, env.db, cs101.ID, other.ID, advanced.ID)

	user := env.staff(t, "u@example.com", &dept.ID)
	_, err := env.services.Assignment().Assign(ctx, env.admin,
		&AssignTrainingsRequest{UserID: user.UserID, TrainingIDs: []uint{cs101.ID, cs301.ID}})
	require.NoError(t, err)
	_, err = env.services.Assignment().Start(ctx, user, cs101.ID)
	require.NoError(t, err)
	_, err = env.services.Assignment().Complete(ctx, user, cs101.ID)
	require.NoError(t, err)
	// cs301 stays not_started and does not count.

	path, err := env.services.Report().CareerPath(ctx, user)
	require.NoError(t, err)
	assert.Equal(t, "Engineering", path.DepartmentName)
	require.Len(t, path.Levels, 2)
	assert.Equal(t, CareerLevel{LevelID: basic.ID, LevelName: "Basic", Total: 2, Completed: 1}, path.Levels[0])
	assert.Equal(t, CareerLevel{LevelID: advanced.ID, LevelName: "Advanced", Total: 1, Completed: 0}, path.Levels[1])

	require.Len(t, path.Sections, 3)
	assert.Equal(t, "CS101", path.Sections[0].Training.Code)
	assert.Equal(t, "Advanced", path.Sections[2].Level.Name)
	require.Len(t, path.CompletedTrainings, 1)
	assert.Equal(t, cs101.ID, path.CompletedTrainings[0].TrainingID)
	assert.Equal(t, models.StatusCompleted, path.CompletedTrainings[0].Status)

	loner := env.staff(t, "loner@example.com", nil)
	_, err = env.services.Report().CareerPath(ctx, loner)
	assert.ErrorIs(t, err, ErrNoDepartment)
}

func TestReportService_AdminOverview(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	testutil.SeedDepartment(t, env.db, "Engineering")
	tr := testutil.SeedTraining(t, env.db, "CS101", "Intro to Computing")
	user := env.staff(t, "u@example.com", nil)

	_, err := env.services.Assignment().Assign(ctx, env.admin,
		&AssignTrainingsRequest{UserID: user.UserID, TrainingIDs: []uint{tr.ID}})
	require.NoError(t, err)
	_, err = env.services.Assignment().Start(ctx, user, tr.ID)
	require.NoError(t, err)
	_, err = env.services.Assignment().Complete(ctx, user, tr.ID)
	require.NoError(t, err)

	overview, err := env.services.Report().AdminOverview(ctx, env.admin)
	require.NoError(t, err)
	assert.Equal(t, int64(2), overview.TotalUsers)
	assert.Equal(t, int64(1), overview.TotalTrainings)
	assert.Equal(t, int64(1), overview.TotalDepartments)
	assert.Equal(t, int64(1), overview.CompletedAssignments)
	assert.Len(t, overview.RecentTrainings, 1)
	assert.Len(t, overview.RecentUsers, 2)

	_, err = env.services.Report().AdminOverview(ctx, user)
	assert.True(t, IsForbidden(err))
}
