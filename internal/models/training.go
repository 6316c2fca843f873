package models

import "time"

type Training struct {
	ID          uint    `json:"id" gorm:"primaryKey"`
	Code        string  `json:"code" gorm:"uniqueIndex;not null;size:20"`
	Title       string  `json:"title" gorm:"not null;size:200"`
	Description *string `json:"description" gorm:"type:text"`

	// PrerequisiteID may point at any training, including one that leads back here.
	PrerequisiteID *uint `json:"prerequisite_id" gorm:"index"`

	CreatedAt time.Time `json:"created_at" gorm:"index"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relations
	Prerequisite *Training         `json:"prerequisite,omitempty" gorm:"foreignKey:PrerequisiteID;constraint:OnDelete:SET NULL"`
	Sections     []TrainingSection `json:"sections,omitempty" gorm:"foreignKey:TrainingID;constraint:OnDelete:CASCADE"`
	Assignments  []UserTraining    `json:"-" gorm:"foreignKey:TrainingID;constraint:OnDelete:CASCADE"`
}

func (Training) TableName() string {
	return "trainings"
}

// TrainingSection binds a training to a department at a level.
// A department has at most one section per training.
type TrainingSection struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	TrainingID   uint      `json:"training_id" gorm:"not null;uniqueIndex:idx_training_department"`
	DepartmentID uint      `json:"department_id" gorm:"not null;uniqueIndex:idx_training_department;index"`
	LevelID      uint      `json:"level_id" gorm:"not null;index"`
	CreatedAt    time.Time `json:"created_at"`

	// Relations
	Training   Training   `json:"training" gorm:"foreignKey:TrainingID"`
	Department Department `json:"department" gorm:"foreignKey:DepartmentID"`
	Level      Level      `json:"level" gorm:"foreignKey:LevelID;constraint:OnDelete:RESTRICT"`
}

func (TrainingSection) TableName() string {
	return "training_sections"
}
