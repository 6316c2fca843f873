package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/SAP-F-2025/training-service/internal/cache"
	"github.com/SAP-F-2025/training-service/internal/models"
	"github.com/SAP-F-2025/training-service/internal/repositories"
	"github.com/SAP-F-2025/training-service/internal/validator"
	"gorm.io/gorm"
)

type assignmentService struct {
	repo      repositories.Repository
	audit     AuditService
	events    TrainingEventService
	cache     cache.CacheService
	logger    *slog.Logger
	svcLogger *ServiceLogger
	validator *validator.Validator

	now func() time.Time
}

func NewAssignmentService(
	repo repositories.Repository,
	audit AuditService,
	events TrainingEventService,
	cacheService cache.CacheService,
	logger *slog.Logger,
	validator *validator.Validator,
) AssignmentService {
	return &assignmentService{
		repo:      repo,
		audit:     audit,
		events:    events,
		cache:     cacheService,
		logger:    logger,
		svcLogger: NewServiceLogger(logger, LogConfig{Service: "training-service", Component: "assignments"}),
		validator: validator,
		now:       time.Now,
	}
}

// ===== LIFECYCLE =====

// Assign creates a not_started assignment for every listed training the user
// does not already have. Existing pairs are skipped, so repeating a call is a
// no-op.
func (s *assignmentService) Assign(ctx context.Context, p Principal, req *AssignTrainingsRequest) (result *AssignResult, err error) {
	var targetID uint
	op := s.svcLogger.WithOperation(ctx, "assign_trainings", p.UserID)
	defer func() { op.LogResult(targetID, "user", err) }()

	if err := Authorize(p, AdminOnly); err != nil {
		return nil, err
	}
	if req == nil {
		return nil, fieldError("training_ids", "is required", nil)
	}
	targetID = req.UserID
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	ok, err := s.repo.User().ExistsByID(ctx, nil, req.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to check user: %w", err)
	}
	if !ok {
		return nil, ErrUserNotFound
	}

	trainingIDs := uniqueIDs(req.TrainingIDs)
	if err := s.checkTrainingsExist(ctx, trainingIDs); err != nil {
		return nil, err
	}

	result = &AssignResult{
		UserID:  req.UserID,
		Created: make([]*models.UserTraining, 0, len(trainingIDs)),
		Skipped: make([]uint, 0),
	}
	now := s.now()

	err = inTx(ctx, s.repo, func(tx *gorm.DB) error {
		existing, err := s.repo.UserTraining().TrainingIDsByUser(ctx, tx, req.UserID, nil)
		if err != nil {
			return fmt.Errorf("failed to load current assignments: %w", err)
		}
		assigned := make(map[uint]struct{}, len(existing))
		for _, id := range existing {
			assigned[id] = struct{}{}
		}

		createdIDs := make([]uint, 0, len(trainingIDs))
		for _, trainingID := range trainingIDs {
			if _, ok := assigned[trainingID]; ok {
				result.Skipped = append(result.Skipped, trainingID)
				continue
			}
			assignment := models.NewAssignment(req.UserID, trainingID, now)
			if err := s.repo.UserTraining().Create(ctx, tx, assignment); err != nil {
				return duplicateAsValidation(err, "training_ids", "Training is already assigned to this user", trainingID)
			}
			result.Created = append(result.Created, assignment)
			createdIDs = append(createdIDs, trainingID)
		}

		if len(createdIDs) == 0 {
			return nil
		}
		return s.audit.Record(ctx, tx, p, AuditEntry{
			Event:       models.AuditTrainingAssigned,
			TargetType:  "user",
			TargetID:    req.UserID,
			Description: fmt.Sprintf("assigned %d training(s)", len(createdIDs)),
			Metadata:    map[string]interface{}{"training_ids": createdIDs, "skipped": result.Skipped},
		})
	})
	if err != nil {
		return nil, err
	}

	result.Assigned = len(result.Created)
	if result.Assigned > 0 {
		ids := make([]uint, 0, result.Assigned)
		for _, a := range result.Created {
			ids = append(ids, a.TrainingID)
		}
		invalidateReports(ctx, s.cache, s.logger)
		s.events.PublishAssigned(ctx, req.UserID, ids, p.UserID)
	}
	return result, nil
}

// Start moves the principal's own assignment to in_progress. Only a missing
// assignment is an error; any other state is returned unchanged.
func (s *assignmentService) Start(ctx context.Context, p Principal, trainingID uint) (*models.UserTraining, error) {
	assignment, changed, err := s.transition(ctx, p, trainingID, "start_training", models.AuditTrainingStarted,
		func(a *models.UserTraining, now time.Time) bool { return a.Start(now) })
	if err != nil {
		return nil, err
	}
	if changed {
		s.events.PublishStarted(ctx, assignment)
	}
	return assignment, nil
}

// Complete moves the principal's own in_progress assignment to completed.
// Completing from any other state has no effect.
func (s *assignmentService) Complete(ctx context.Context, p Principal, trainingID uint) (*models.UserTraining, error) {
	assignment, changed, err := s.transition(ctx, p, trainingID, "complete_training", models.AuditTrainingCompleted,
		func(a *models.UserTraining, now time.Time) bool { return a.Complete(now) })
	if err != nil {
		return nil, err
	}
	if changed {
		s.events.PublishCompleted(ctx, assignment)
	}
	return assignment, nil
}

func (s *assignmentService) transition(
	ctx context.Context,
	p Principal,
	trainingID uint,
	operation string,
	event models.AuditEventType,
	apply func(a *models.UserTraining, now time.Time) bool,
) (assignment *models.UserTraining, changed bool, err error) {
	op := s.svcLogger.WithOperation(ctx, operation, p.UserID)
	defer func() { op.LogResult(trainingID, "training", err) }()

	if err := Authorize(p, Authenticated); err != nil {
		return nil, false, err
	}

	from := models.TrainingStatus("")
	err = inTx(ctx, s.repo, func(tx *gorm.DB) error {
		current, err := s.repo.UserTraining().GetByUserAndTraining(ctx, tx, p.UserID, trainingID)
		if err != nil {
			return mapNotFound(err, ErrTrainingNotAssigned, "get assignment")
		}
		assignment = current
		from = current.Status

		if !apply(current, s.now()) {
			return nil
		}
		changed = true

		if err := s.repo.UserTraining().UpdateStatus(ctx, tx, current); err != nil {
			return fmt.Errorf("failed to update assignment status: %w", err)
		}
		return s.audit.Record(ctx, tx, p, AuditEntry{
			Event:       event,
			TargetType:  "user_training",
			TargetID:    current.ID,
			Description: fmt.Sprintf("%s: %s -> %s", current.Training.Code, from, current.Status),
			Metadata:    map[string]interface{}{"training_id": trainingID, "from": from, "to": current.Status},
		})
	})
	if err != nil {
		return nil, false, err
	}

	if changed {
		invalidateReports(ctx, s.cache, s.logger)
	} else {
		s.logger.Debug("Ignored status transition",
			"operation", operation,
			"user_id", p.UserID,
			"training_id", trainingID,
			"status", from)
	}
	return assignment, changed, nil
}

// ===== QUERIES =====

func (s *assignmentService) ListForUser(ctx context.Context, p Principal, status *models.TrainingStatus) ([]*models.UserTraining, error) {
	if err := Authorize(p, Authenticated); err != nil {
		return nil, err
	}
	if status != nil && !status.Valid() {
		return nil, fieldError("status", "Invalid training status", string(*status))
	}

	userID := p.UserID
	assignments, _, err := s.repo.UserTraining().List(ctx, nil, repositories.UserTrainingFilters{
		UserID: &userID,
		Status: status,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list assignments: %w", err)
	}
	return assignments, nil
}

func (s *assignmentService) ListAll(ctx context.Context, p Principal, filters repositories.UserTrainingFilters) (*AssignmentListResponse, error) {
	if err := Authorize(p, AdminOnly); err != nil {
		return nil, err
	}

	assignments, total, err := s.repo.UserTraining().List(ctx, nil, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list assignments: %w", err)
	}
	return &AssignmentListResponse{Assignments: assignments, Total: total}, nil
}

func (s *assignmentService) AssignedTrainingIDs(ctx context.Context, p Principal, userID uint) ([]uint, error) {
	if err := Authorize(p, SelfOrAdmin(userID)); err != nil {
		return nil, err
	}

	ok, err := s.repo.User().ExistsByID(ctx, nil, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to check user: %w", err)
	}
	if !ok {
		return nil, ErrUserNotFound
	}

	ids, err := s.repo.UserTraining().TrainingIDsByUser(ctx, nil, userID, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list assigned trainings: %w", err)
	}
	return ids, nil
}

func (s *assignmentService) TrainingDetail(ctx context.Context, p Principal, trainingID uint) (*TrainingDetail, error) {
	if err := Authorize(p, Authenticated); err != nil {
		return nil, err
	}

	assignment, err := s.repo.UserTraining().GetByUserAndTraining(ctx, nil, p.UserID, trainingID)
	if err != nil {
		return nil, mapNotFound(err, ErrTrainingNotAssigned, "get assignment")
	}

	sections, err := s.repo.TrainingSection().List(ctx, nil, repositories.TrainingSectionFilters{TrainingID: &trainingID})
	if err != nil {
		return nil, fmt.Errorf("failed to list training sections: %w", err)
	}
	return &TrainingDetail{Assignment: assignment, Sections: sections}, nil
}

func (s *assignmentService) checkTrainingsExist(ctx context.Context, ids []uint) error {
	trainings, err := s.repo.Training().GetByIDs(ctx, nil, ids)
	if err != nil {
		return fmt.Errorf("failed to load trainings: %w", err)
	}
	if len(trainings) == len(ids) {
		return nil
	}

	found := make(map[uint]struct{}, len(trainings))
	for _, t := range trainings {
		found[t.ID] = struct{}{}
	}
	var errs ValidationErrors
	for _, id := range ids {
		if _, ok := found[id]; !ok {
			errs = append(errs, *NewValidationError("training_ids", "Training does not exist", id))
		}
	}
	return errs
}

func uniqueIDs(ids []uint) []uint {
	seen := make(map[uint]struct{}, len(ids))
	out := make([]uint, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
