package postgres

import (
	"github.com/SAP-F-2025/training-service/internal/repositories"
	"gorm.io/gorm"
)

type repository struct {
	db              *gorm.DB
	user            repositories.UserRepository
	department      repositories.DepartmentRepository
	level           repositories.LevelRepository
	training        repositories.TrainingRepository
	trainingSection repositories.TrainingSectionRepository
	userTraining    repositories.UserTrainingRepository
	auditLog        repositories.AuditLogRepository
}

// NewRepository wires every GORM repository onto one connection
func NewRepository(db *gorm.DB) repositories.Repository {
	return &repository{
		db:              db,
		user:            NewUserPostgreSQL(db),
		department:      NewDepartmentPostgreSQL(db),
		level:           NewLevelPostgreSQL(db),
		training:        NewTrainingPostgreSQL(db),
		trainingSection: NewTrainingSectionPostgreSQL(db),
		userTraining:    NewUserTrainingPostgreSQL(db),
		auditLog:        NewAuditLogPostgreSQL(db),
	}
}

func (r *repository) User() repositories.UserRepository                       { return r.user }
func (r *repository) Department() repositories.DepartmentRepository           { return r.department }
func (r *repository) Level() repositories.LevelRepository                     { return r.level }
func (r *repository) Training() repositories.TrainingRepository               { return r.training }
func (r *repository) TrainingSection() repositories.TrainingSectionRepository { return r.trainingSection }
func (r *repository) UserTraining() repositories.UserTrainingRepository       { return r.userTraining }
func (r *repository) AuditLog() repositories.AuditLogRepository               { return r.auditLog }
func (r *repository) DB() *gorm.DB                                            { return r.db }
