package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/SAP-F-2025/training-service/internal/events"
	"github.com/SAP-F-2025/training-service/internal/models"
	"github.com/SAP-F-2025/training-service/internal/repositories"
	"github.com/SAP-F-2025/training-service/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAssignmentService_AssignIsIdempotent(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	cs101 := testutil.SeedTraining(t, env.db, "CS101", "Intro to Computing")
	cs201 := testutil.SeedTraining(t, env.db, "CS201", "Data Structures")
	user := env.staff(t, "u@example.com", nil)

	req := &AssignTrainingsRequest{UserID: user.UserID, TrainingIDs: []uint{cs101.ID, cs201.ID}}

	result, err := env.services.Assignment().Assign(ctx, env.admin, req)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Assigned)
	assert.Empty(t, result.Skipped)

	for _, id := range []uint{cs101.ID, cs201.ID} {
		ut := env.assignment(t, user.UserID, id)
		assert.Equal(t, models.StatusNotStarted, ut.Status)
		assert.NotNil(t, ut.StartedAt, "assignment time is stamped as start time")
		assert.Nil(t, ut.CompletedAt)
	}

	result, err = env.services.Assignment().Assign(ctx, env.admin, req)
	require.NoError(t, err)
	assert.Equal(t, 0, result.Assigned)
	assert.ElementsMatch(t, []uint{cs101.ID, cs201.ID}, result.Skipped)
	assert.Equal(t, int64(2), env.count(t, &models.UserTraining{}, "user_id = ?", user.UserID))

	published := env.publisher.GetPublishedEvents()
	require.Len(t, published, 1, "only the call that created rows publishes")
	assert.Equal(t, events.EventTrainingAssigned, published[0].Type)
	data, ok := published[0].Data.(events.TrainingAssignedEvent)
	require.True(t, ok)
	assert.ElementsMatch(t, []uint{cs101.ID, cs201.ID}, data.TrainingIDs)
	assert.Equal(t, env.admin.UserID, data.AssignedBy)
}

func TestAssignmentService_AssignDuplicatesInRequest(t *testing.T) {
	env := newTestEnv(t)
	tr := testutil.SeedTraining(t, env.db, "CS101", "Intro to Computing")
	user := env.staff(t, "u@example.com", nil)

	result, err := env.services.Assignment().Assign(context.Background(), env.admin,
		&AssignTrainingsRequest{UserID: user.UserID, TrainingIDs: []uint{tr.ID, tr.ID}})
	require.NoError(t, err)
	assert.Equal(t, 1, result.Assigned)
}

func TestAssignmentService_AssignRejections(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	tr := testutil.SeedTraining(t, env.db, "CS101", "Intro to Computing")
	user := env.staff(t, "u@example.com", nil)

	t.Run("non-admin", func(t *testing.T) {
		_, err := env.services.Assignment().Assign(ctx, user,
			&AssignTrainingsRequest{UserID: user.UserID, TrainingIDs: []uint{tr.ID}})
		assert.True(t, IsForbidden(err))
	})

	t.Run("anonymous", func(t *testing.T) {
		_, err := env.services.Assignment().Assign(ctx, Principal{},
			&AssignTrainingsRequest{UserID: user.UserID, TrainingIDs: []uint{tr.ID}})
		assert.ErrorIs(t, err, ErrUnauthorized)
	})

	t.Run("empty training list", func(t *testing.T) {
		_, err := env.services.Assignment().Assign(ctx, env.admin,
			&AssignTrainingsRequest{UserID: user.UserID})
		assert.True(t, IsValidation(err))
	})

	t.Run("unknown training", func(t *testing.T) {
		_, err := env.services.Assignment().Assign(ctx, env.admin,
			&AssignTrainingsRequest{UserID: user.UserID, TrainingIDs: []uint{tr.ID, 9999}})
		var ve ValidationErrors
		require.True(t, errors.As(err, &ve))
		assert.Equal(t, "training_ids", ve[0].Field)
		assert.Equal(t, int64(0), env.count(t, &models.UserTraining{}, ""), "nothing is written on failure")
	})

	t.Run("unknown user", func(t *testing.T) {
		_, err := env.services.Assignment().Assign(ctx, env.admin,
			&AssignTrainingsRequest{UserID: 9999, TrainingIDs: []uint{tr.ID}})
		assert.ErrorIs(t, err, ErrUserNotFound)
	})
}

func TestAssignmentService_StatusLifecycle(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	cs101 := testutil.SeedTraining(t, env.db, "CS101", "Intro to Computing")
	cs201 := testutil.SeedTraining(t, env.db, "CS201", "Data Structures")
	user := env.staff(t, "u@example.com", nil)

	_, err := env.services.Assignment().Assign(ctx, env.admin,
		&AssignTrainingsRequest{UserID: user.UserID, TrainingIDs: []uint{cs101.ID, cs201.ID}})
	require.NoError(t, err)
	env.publisher.ClearEvents()

	// Assign stamps StartedAt; push it back so the overwrite by Start is visible.
	assigned := env.assignment(t, user.UserID, cs101.ID)
	require.NotNil(t, assigned.StartedAt)
	assignedAt := time.Now().Add(-time.Hour)
	require.NoError(t, env.db.Model(&models.UserTraining{}).
		Where("id = ?", assigned.ID).Update("started_at", assignedAt).Error)

	started, err := env.services.Assignment().Start(ctx, user, cs101.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusInProgress, started.Status)
	restamped := env.assignment(t, user.UserID, cs101.ID)
	require.NotNil(t, restamped.StartedAt)
	assert.True(t, restamped.StartedAt.After(assignedAt.Add(30*time.Minute)),
		"Start replaces the timestamp written at assignment")

	completed, err := env.services.Assignment().Complete(ctx, user, cs101.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCompleted, completed.Status)

	stored := env.assignment(t, user.UserID, cs101.ID)
	assert.Equal(t, models.StatusCompleted, stored.Status)
	require.NotNil(t, stored.StartedAt)
	require.NotNil(t, stored.CompletedAt)
	assert.False(t, stored.CompletedAt.Before(*stored.StartedAt))

	// Complete on a not_started assignment is ignored without error.
	untouched, err := env.services.Assignment().Complete(ctx, user, cs201.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusNotStarted, untouched.Status)
	assert.Equal(t, models.StatusNotStarted, env.assignment(t, user.UserID, cs201.ID).Status)

	// Nothing leaves completed.
	again, err := env.services.Assignment().Start(ctx, user, cs101.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCompleted, again.Status)

	published := env.publisher.GetPublishedEvents()
	require.Len(t, published, 2)
	assert.Equal(t, events.EventTrainingStarted, published[0].Type)
	assert.Equal(t, events.EventTrainingCompleted, published[1].Type)
	data, ok := published[1].Data.(events.TrainingCompletedEvent)
	require.True(t, ok)
	assert.Equal(t, "CS101", data.TrainingCode)
}

func TestAssignmentService_TransitionsAreAudited(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	tr := testutil.SeedTraining(t, env.db, "CS101", "Intro to Computing")
	user := env.staff(t, "u@example.com", nil)

	_, err := env.services.Assignment().Assign(ctx, env.admin,
		&AssignTrainingsRequest{UserID: user.UserID, TrainingIDs: []uint{tr.ID}})
	require.NoError(t, err)
	_, err = env.services.Assignment().Start(ctx, user, tr.ID)
	require.NoError(t, err)

	logs, err := env.services.Audit().List(ctx, env.admin, repositories.AuditLogFilters{})
	require.NoError(t, err)
	types := make([]models.AuditEventType, 0, len(logs.Entries))
	for _, entry := range logs.Entries {
		types = append(types, entry.EventType)
	}
	assert.Contains(t, types, models.AuditTrainingAssigned)
	assert.Contains(t, types, models.AuditTrainingStarted)

	_, err = env.services.Audit().List(ctx, user, repositories.AuditLogFilters{})
	assert.True(t, IsForbidden(err))
}

func TestAssignmentService_NotAssigned(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	tr := testutil.SeedTraining(t, env.db, "CS101", "Intro to Computing")
	user := env.staff(t, "u@example.com", nil)

	_, err := env.services.Assignment().Start(ctx, user, tr.ID)
	assert.ErrorIs(t, err, ErrTrainingNotAssigned)
	assert.True(t, IsNotFound(err))

	_, err = env.services.Assignment().Complete(ctx, user, tr.ID)
	assert.ErrorIs(t, err, ErrTrainingNotAssigned)

	_, err = env.services.Assignment().TrainingDetail(ctx, user, tr.ID)
	assert.ErrorIs(t, err, ErrTrainingNotAssigned)
	assert.Empty(t, env.publisher.GetPublishedEvents())
}

func TestAssignmentService_Queries(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	dept := testutil.SeedDepartment(t, env.db, "Engineering")
	level := testutil.SeedLevel(t, env.db, "Basic")
	cs101 := testutil.SeedTraining(t, env.db, "CS101", "Intro to Computing")
	cs201 := testutil.SeedTraining(t, env.db, "CS201", "Data Structures")
	testutil.SeedSection(t, env.db, cs101.ID, dept.ID, level.ID)
	user := env.staff(t, "u@example.com", &dept.ID)
	other := env.staff(t, "o@example.com", nil)

	_, err := env.services.Assignment().Assign(ctx, env.admin,
		&AssignTrainingsRequest{UserID: user.UserID, TrainingIDs: []uint{cs101.ID, cs201.ID}})
	require.NoError(t, err)
	_, err = env.services.Assignment().Start(ctx, user, cs101.ID)
	require.NoError(t, err)

	mine, err := env.services.Assignment().ListForUser(ctx, user, nil)
	require.NoError(t, err)
	assert.Len(t, mine, 2)

	inProgress := models.StatusInProgress
	mine, err = env.services.Assignment().ListForUser(ctx, user, &inProgress)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, cs101.ID, mine[0].TrainingID)

	ids, err := env.services.Assignment().AssignedTrainingIDs(ctx, env.admin, user.UserID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []uint{cs101.ID, cs201.ID}, ids)

	_, err = env.services.Assignment().AssignedTrainingIDs(ctx, other, user.UserID)
	assert.True(t, IsForbidden(err))

	all, err := env.services.Assignment().ListAll(ctx, env.admin, repositories.UserTrainingFilters{})
	require.NoError(t, err)
	assert.Equal(t, int64(2), all.Total)

	detail, err := env.services.Assignment().TrainingDetail(ctx, user, cs101.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusInProgress, detail.Assignment.Status)
	require.Len(t, detail.Sections, 1)
	assert.Equal(t, "Engineering", detail.Sections[0].Department.Name)
}

func TestAssignmentService_AssignNilRequest(t *testing.T) {
	env := newTestEnv(t)

	var result *AssignResult
	var err error
	assert.NotPanics(t, func() {
		result, err = env.services.Assignment().Assign(context.Background(), env.admin, nil)
	})
	assert.Nil(t, result)
	assert.True(t, IsValidation(err))
}
