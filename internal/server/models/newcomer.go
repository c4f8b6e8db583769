package models

import "time"

// Newcomer is a signup waiting for email verification. Several newcomers may
// share an email.
type Newcomer struct {
	ID        string
	Name      string
	Email     string
	Password  string
	CreatedAt time.Time
}

// NewcomerView is the part of a Newcomer returned by registration.
type NewcomerView struct {
	ID        string    `json:"user_id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

func (n *Newcomer) View() *NewcomerView {
	return &NewcomerView{
		ID:        n.ID,
		Name:      n.Name,
		Email:     n.Email,
		CreatedAt: n.CreatedAt,
	}
}

// Promote turns the newcomer into a verified user.
func (n *Newcomer) Promote(verifiedAt time.Time) *User {
	return &User{
		ID:         n.ID,
		Name:       n.Name,
		Email:      n.Email,
		Password:   n.Password,
		CreatedAt:  n.CreatedAt,
		VerifiedAt: verifiedAt,
		Role:       RoleUser,
	}
}

// RegistrationToken binds the hash of an emailed token to a newcomer.
type RegistrationToken struct {
	TokenHash string
	UserID    string
	CreatedAt time.Time
	ExpiredAt time.Time
}
