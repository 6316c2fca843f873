package services

import (
	"github.com/SAP-F-2025/training-service/internal/models"
)

// Principal is the acting user of a service call. The zero value is anonymous.
type Principal struct {
	UserID       uint            `json:"user_id"`
	Email        string          `json:"email"`
	FullName     string          `json:"full_name"`
	Role         models.UserRole `json:"role"`
	DepartmentID *uint           `json:"department_id"`
}

func PrincipalFromUser(u *models.User) Principal {
	if u == nil {
		return Principal{}
	}
	return Principal{
		UserID:       u.ID,
		Email:        u.Email,
		FullName:     u.FullName,
		Role:         u.Role,
		DepartmentID: u.DepartmentID,
	}
}

func (p Principal) IsAnonymous() bool {
	return p.UserID == 0
}

func (p Principal) IsAdmin() bool {
	return !p.IsAnonymous() && p.Role == models.RoleAdmin
}

// Policy decides whether a principal may proceed. It returns nil to allow.
type Policy func(p Principal) error

// Authenticated admits any signed-in principal.
func Authenticated(p Principal) error {
	if p.IsAnonymous() {
		return ErrUnauthorized
	}
	return nil
}

// AdminOnly admits signed-in admins.
func AdminOnly(p Principal) error {
	if err := Authenticated(p); err != nil {
		return err
	}
	if !p.IsAdmin() {
		return ErrForbidden
	}
	return nil
}

// SelfOrAdmin admits the principal acting on its own user id, or any admin.
func SelfOrAdmin(userID uint) Policy {
	return func(p Principal) error {
		if err := Authenticated(p); err != nil {
			return err
		}
		if p.UserID != userID && !p.IsAdmin() {
			return NewPermissionError(p.UserID, userID, "user", "access", "not the account owner")
		}
		return nil
	}
}

// Authorize applies policies in order and returns the first denial.
func Authorize(p Principal, policies ...Policy) error {
	for _, policy := range policies {
		if err := policy(p); err != nil {
			return err
		}
	}
	return nil
}
