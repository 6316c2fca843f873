package models

import (
	"time"

	"gorm.io/datatypes"
)

type AuditEventType string

const (
	AuditDepartmentCreated AuditEventType = "department_created"
	AuditDepartmentUpdated AuditEventType = "department_updated"
	AuditDepartmentDeleted AuditEventType = "department_deleted"
	AuditLevelCreated      AuditEventType = "level_created"
	AuditLevelUpdated      AuditEventType = "level_updated"
	AuditLevelDeleted      AuditEventType = "level_deleted"
	AuditTrainingCreated   AuditEventType = "training_created"
	AuditTrainingUpdated   AuditEventType = "training_updated"
	AuditTrainingDeleted   AuditEventType = "training_deleted"
	AuditSectionCreated    AuditEventType = "training_section_created"
	AuditSectionDeleted    AuditEventType = "training_section_deleted"
	AuditUserCreated       AuditEventType = "user_created"
	AuditUserUpdated       AuditEventType = "user_updated"
	AuditUserDeleted       AuditEventType = "user_deleted"
	AuditPasswordChanged   AuditEventType = "password_changed"
	AuditTrainingAssigned  AuditEventType = "training_assigned"
	AuditTrainingStarted   AuditEventType = "training_started"
	AuditTrainingCompleted AuditEventType = "training_completed"
)

type AuditLog struct {
	ID        uint           `json:"id" gorm:"primaryKey"`
	EventType AuditEventType `json:"event_type" gorm:"not null;size:50;index"`

	// Actor information. No foreign key: the trail outlives deleted users.
	UserID    uint     `json:"user_id" gorm:"not null;index"`
	UserEmail string   `json:"user_email" gorm:"not null;size:120"`
	UserRole  UserRole `json:"user_role" gorm:"type:varchar(20);not null"`

	// Target information
	TargetType string `json:"target_type" gorm:"size:50;index"` // department, level, training, training_section, user, user_training
	TargetID   *uint  `json:"target_id" gorm:"index"`

	Description string         `json:"description" gorm:"not null;type:text"`
	Metadata    datatypes.JSON `json:"metadata"`

	CreatedAt time.Time `json:"created_at" gorm:"index"`
}

func (AuditLog) TableName() string {
	return "audit_logs"
}
