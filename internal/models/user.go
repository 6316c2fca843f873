package models

import (
	"database/sql/driver"
	"fmt"
	"time"
)

type UserRole string

const (
	RoleAdmin   UserRole = "admin"
	RoleTrainer UserRole = "trainer"
	RoleStaff   UserRole = "staff"
)

// UserRoles lists every valid role in display order.
var UserRoles = []UserRole{RoleStaff, RoleTrainer, RoleAdmin}

// ParseUserRole converts raw input into a UserRole, rejecting unknown values.
func ParseUserRole(s string) (UserRole, error) {
	role := UserRole(s)
	if !role.Valid() {
		return "", fmt.Errorf("invalid user role %q", s)
	}
	return role, nil
}

func (r UserRole) Valid() bool {
	switch r {
	case RoleAdmin, RoleTrainer, RoleStaff:
		return true
	}
	return false
}

func (r UserRole) String() string {
	return string(r)
}

// Value refuses to persist a role outside the closed set.
func (r UserRole) Value() (driver.Value, error) {
	if !r.Valid() {
		return nil, fmt.Errorf("invalid user role %q", string(r))
	}
	return string(r), nil
}

func (r *UserRole) Scan(value interface{}) error {
	var raw string
	switch v := value.(type) {
	case string:
		raw = v
	case []byte:
		raw = string(v)
	default:
		return fmt.Errorf("cannot scan %T into UserRole", value)
	}
	role, err := ParseUserRole(raw)
	if err != nil {
		return err
	}
	*r = role
	return nil
}

type User struct {
	ID           uint     `json:"id" gorm:"primaryKey"`
	FullName     string   `json:"full_name" gorm:"not null;size:100"`
	Email        string   `json:"email" gorm:"uniqueIndex;not null;size:120"`
	PasswordHash string   `json:"-" gorm:"not null;size:255"`
	Role         UserRole `json:"role" gorm:"type:varchar(20);not null;default:staff"`
	DepartmentID *uint    `json:"department_id" gorm:"index"`
	IsActive     bool     `json:"is_active" gorm:"not null"`

	CreatedAt time.Time `json:"created_at" gorm:"index"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relations
	Department *Department    `json:"department,omitempty" gorm:"foreignKey:DepartmentID;constraint:OnDelete:SET NULL"`
	Trainings  []UserTraining `json:"trainings,omitempty" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
}

func (User) TableName() string {
	return "users"
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

func (u *User) IsTrainer() bool {
	return u.Role == RoleTrainer
}
