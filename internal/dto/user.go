package dto

import "github.com/helixtrack/core/internal/models"

// UserDTO represents a user in API responses
type UserDTO struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email,omitempty"`
	Name     string `json:"name,omitempty"`
}

// LoginResponse carries the user and a bearer token for non-browser clients
type LoginResponse struct {
	User      UserDTO `json:"user"`
	Token     string  `json:"token"`
	ExpiresAt int64   `json:"expires_at"`
}

// ToUserDTO converts a User model to UserDTO
func ToUserDTO(user models.User) UserDTO {
	return UserDTO{
		ID:       user.ID,
		Username: user.Username,
		Email:    user.Email,
		Name:     user.Name,
	}
}
