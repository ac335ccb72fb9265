package dto

import "time"

type RegisterRequest struct {
	Name     string `json:"name" form:"name" validate:"required,max=120"`
	Email    string `json:"email" form:"email" validate:"required,email"`
	Password string `json:"password" form:"password" validate:"required,max=128"`
}

type LoginRequest struct {
	Email    string `json:"email" form:"email" validate:"required"`
	Password string `json:"password" form:"password" validate:"required"`
}

// GoogleLoginRequest carries the provider ID token. An empty token is
// rejected by the auth service as an identity failure.
type GoogleLoginRequest struct {
	Token string `json:"token" form:"token"`
}

type LoginResponse struct {
	UserID    string    `json:"userId"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
	Message   string    `json:"message,omitempty"`
}
