package services

import (
	"log/slog"
	"time"

	"github.com/SAP-F-2025/training-service/internal/cache"
	"github.com/SAP-F-2025/training-service/internal/events"
	"github.com/SAP-F-2025/training-service/internal/repositories"
	"github.com/SAP-F-2025/training-service/internal/validator"
)

// ServiceManager hands out the service set built over one repository.
type ServiceManager interface {
	Auth() AuthService
	User() UserService
	Department() DepartmentService
	Level() LevelService
	Training() TrainingService
	TrainingSection() TrainingSectionService
	Assignment() AssignmentService
	Report() ReportService
	Audit() AuditService
}

type ServiceOptions struct {
	DefaultUserPassword string
	ReportCacheTTL      time.Duration
}

type serviceManager struct {
	auth            AuthService
	user            UserService
	department      DepartmentService
	level           LevelService
	training        TrainingService
	trainingSection TrainingSectionService
	assignment      AssignmentService
	report          ReportService
	audit           AuditService
}

func NewServiceManager(
	repo repositories.Repository,
	cacheService cache.CacheService,
	publisher events.EventPublisher,
	logger *slog.Logger,
	validator *validator.Validator,
	opts ServiceOptions,
) ServiceManager {
	if cacheService == nil {
		cacheService = cache.NewNoopCache()
	}
	if opts.ReportCacheTTL <= 0 {
		opts.ReportCacheTTL = 5 * time.Minute
	}

	audit := NewAuditService(repo, logger)
	trainingEvents := NewTrainingEventService(publisher, logger)

	return &serviceManager{
		auth:            NewAuthService(repo, audit, logger, validator),
		user:            NewUserService(repo, audit, cacheService, logger, validator, opts.DefaultUserPassword),
		department:      NewDepartmentService(repo, audit, cacheService, logger, validator),
		level:           NewLevelService(repo, audit, cacheService, logger, validator),
		training:        NewTrainingService(repo, audit, cacheService, logger, validator),
		trainingSection: NewTrainingSectionService(repo, audit, cacheService, logger, validator),
		assignment:      NewAssignmentService(repo, audit, trainingEvents, cacheService, logger, validator),
		report:          NewReportService(repo, cacheService, opts.ReportCacheTTL, logger),
		audit:           audit,
	}
}

func (m *serviceManager) Auth() AuthService                       { return m.auth }
func (m *serviceManager) User() UserService                       { return m.user }
func (m *serviceManager) Department() DepartmentService           { return m.department }
func (m *serviceManager) Level() LevelService                     { return m.level }
func (m *serviceManager) Training() TrainingService               { return m.training }
func (m *serviceManager) TrainingSection() TrainingSectionService { return m.trainingSection }
func (m *serviceManager) Assignment() AssignmentService           { return m.assignment }
func (m *serviceManager) Report() ReportService                   { return m.report }
func (m *serviceManager) Audit() AuditService                     { return m.audit }
