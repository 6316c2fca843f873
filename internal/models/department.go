package models

import "time"

type Department struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	Name        string    `json:"name" gorm:"uniqueIndex;not null;size:100"`
	Description *string   `json:"description" gorm:"type:text"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	// Relations
	Sections []TrainingSection `json:"sections,omitempty" gorm:"foreignKey:DepartmentID;constraint:OnDelete:CASCADE"`
	Users    []User            `json:"-" gorm:"foreignKey:DepartmentID;constraint:OnDelete:SET NULL"`
}

func (Department) TableName() string {
	return "departments"
}

// Level is a difficulty tier (Basic, Intermediate, Advanced) applied to a TrainingSection.
type Level struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Name      string    `json:"name" gorm:"uniqueIndex;not null;size:50"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Level) TableName() string {
	return "levels"
}
