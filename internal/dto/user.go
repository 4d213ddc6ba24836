package dto

import (
	"time"

	"github.com/kaustubhdw/user_auth_app/internal/core/domain"
)

// UserResponse is the outward-facing shape of a user account. The password
// hash and all token fingerprints are never serialized.
type UserResponse struct {
	UserID          string     `json:"userID"`
	FullName        string     `json:"fullName"`
	Email           string     `json:"email"`
	Bio             string     `json:"bio,omitempty"`
	Role            string     `json:"role"`
	IsEmailVerified bool       `json:"isEmailVerified"`
	IsActive        bool       `json:"isActive"`
	LastLoginAt     *time.Time `json:"lastLoginAt,omitempty"`
	CreatedAt       time.Time  `json:"createdAt"`
}

// ToUserResponse converts a domain.User to a UserResponse DTO.
func ToUserResponse(user *domain.User) UserResponse {
	return UserResponse{
		UserID:          user.UserID,
		FullName:        user.FullName,
		Email:           user.Email,
		Bio:             user.Bio,
		Role:            string(user.Role),
		IsEmailVerified: user.IsEmailVerified,
		IsActive:        user.IsActive,
		LastLoginAt:     user.LastLoginAt,
		CreatedAt:       user.CreatedAt,
	}
}

// UpdateProfileRequest defines the fields a user may change on their own profile.
// Pointers differentiate omitted fields from zero-value fields.
type UpdateProfileRequest struct {
	FullName *string `json:"fullName" binding:"omitempty,min=2,max=100"`
	Bio      *string `json:"bio" binding:"omitempty,max=500"`
}

// ChangePasswordRequest is the payload for an authenticated password change.
type ChangePasswordRequest struct {
	OldPassword string `json:"oldPassword" binding:"required"`
	NewPassword string `json:"newPassword" binding:"required,min=8,max=72"`
}
