package domain

import "time"

type UserRole string

const (
	RoleMember    UserRole = "member"
	RoleOrganizer UserRole = "organizer"
	RoleAdmin     UserRole = "admin"
)

// IsValid reports whether the role is one of the known roles.
func (r UserRole) IsValid() bool {
	switch r {
	case RoleMember, RoleOrganizer, RoleAdmin:
		return true
	}
	return false
}

type User struct {
	ID          string    `json:"id"`
	Email       string    `json:"email"`
	Password    string    `json:"-"`
	DisplayName string    `json:"display_name"`
	Role        UserRole  `json:"role"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
