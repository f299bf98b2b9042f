package model

import "time"

// Roles understood by the dashboard.
const (
	RoleAdmin  = "admin"
	RoleEditor = "editor"
	RoleViewer = "viewer"
)

var AllRoles = []string{RoleAdmin, RoleEditor, RoleViewer}

// User is a dashboard account as returned by the partnership API.
type User struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Email     string     `json:"email"`
	Roles     []string   `json:"roles"`
	IsActive  bool       `json:"isActive"`
	CreatedAt *time.Time `json:"createdAt,omitempty"`
	UpdatedAt *time.Time `json:"updatedAt,omitempty"`
}

// HasRole reports whether the user carries role.
func (u User) HasRole(role string) bool {
	for _, r := range u.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// UserList is the envelope of GET /users.
type UserList struct {
	Users []User `json:"users"`
}

// NewUser contains the information needed to create a user.
type NewUser struct {
	Name            string   `json:"name" validate:"required,min=2"`
	Email           string   `json:"email" validate:"required,email"`
	Password        string   `json:"password" validate:"required,min=8"`
	ConfirmPassword string   `json:"confirmPassword" validate:"required,eqfield=Password"`
	Roles           []string `json:"roles" validate:"omitempty,dive,oneof=admin editor viewer"`
}

// UpdateUser defines what may change on an existing user. Nil fields are left untouched.
type UpdateUser struct {
	Name     *string  `json:"name,omitempty" validate:"omitempty,min=2"`
	Email    *string  `json:"email,omitempty" validate:"omitempty,email"`
	Roles    []string `json:"roles,omitempty" validate:"omitempty,dive,oneof=admin editor viewer"`
	IsActive *bool    `json:"isActive,omitempty"`
}

// ResetPassword is the payload of POST /auth/reset-password.
type ResetPassword struct {
	Email           string `json:"email" validate:"required,email"`
	NewPassword     string `json:"newPassword" validate:"required,min=8"`
	ConfirmPassword string `json:"confirmPassword" validate:"required,eqfield=NewPassword"`
}
