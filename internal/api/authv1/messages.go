// Package authv1 declares the gophauth.v1.AuthService gRPC contract: request
// and response messages, the JSON codec they travel with, the service
// descriptor and a typed client.
package authv1

import "time"

type RegisterRequest struct {
	Name     string `json:"name" validate:"required,max=50"`
	Email    string `json:"email" validate:"required,email,max=128"`
	Password string `json:"password" validate:"required"`
}

// Newcomer is a registered but not yet verified account.
type Newcomer struct {
	UserID    string    `json:"user_id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

type RegisterResponse struct {
	Newcomer Newcomer `json:"newcomer"`
}

type VerifyRequest struct {
	Token string `json:"token" validate:"required"`
}

// User is a verified account.
type User struct {
	UserID     string    `json:"user_id"`
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	CreatedAt  time.Time `json:"created_at"`
	VerifiedAt time.Time `json:"verified_at"`
	Role       string    `json:"role"`
}

type UserResponse struct {
	User User `json:"user"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email,max=128"`
	Password string `json:"password" validate:"required"`
}

type LoginResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

type GetMeRequest struct{}

type GetUserRequest struct {
	UserID string `json:"user_id" validate:"required"`
}

type PingRequest struct{}

type PingResponse struct {
	Message string `json:"message"`
}

type HealthRequest struct{}

type HealthResponse struct {
	Status string `json:"status"`
}
