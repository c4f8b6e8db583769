package models

import "time"

// Role is the access level of a verified account.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// IsAdmin reports whether the role grants access to other accounts.
func (r Role) IsAdmin() bool {
	return r == RoleAdmin
}

// User is a verified account. ID and CreatedAt are carried over from the
// newcomer it was promoted from.
type User struct {
	ID         string
	Name       string
	Email      string
	Password   string
	CreatedAt  time.Time
	VerifiedAt time.Time
	Role       Role
}

// UserView is the part of a User that leaves the service.
type UserView struct {
	ID         string    `json:"user_id"`
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	CreatedAt  time.Time `json:"created_at"`
	VerifiedAt time.Time `json:"verified_at"`
	Role       Role      `json:"role"`
}

func (u *User) View() *UserView {
	return &UserView{
		ID:         u.ID,
		Name:       u.Name,
		Email:      u.Email,
		CreatedAt:  u.CreatedAt,
		VerifiedAt: u.VerifiedAt,
		Role:       u.Role,
	}
}
