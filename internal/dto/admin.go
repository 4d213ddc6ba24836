package dto

import (
	"time"

	"github.com/kaustubhdw/user_auth_app/internal/core/domain"
)

// ListUsersParams defines query parameters for the admin user listing.
type ListUsersParams struct {
	Page   int    `form:"page,default=1"`
	Limit  int    `form:"limit,default=50"`
	Search string `form:"search"`
}

// Pagination describes the window returned by a paginated listing.
type Pagination struct {
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Total int64 `json:"total"`
	Pages int64 `json:"pages"`
}

// ListUsersResponse wraps a page of users.
type ListUsersResponse struct {
	Users      []UserResponse `json:"users"`
	Pagination Pagination     `json:"pagination"`
}

// AdminCreateUserRequest creates a user on behalf of an admin. Password is
// optional: accounts without one can only authenticate through OAuth until a
// password is provisioned via the reset flow.
type AdminCreateUserRequest struct {
	FullName string  `json:"fullName" binding:"required,min=2,max=100"`
	Email    string  `json:"email" binding:"required,email"`
	Password *string `json:"password" binding:"omitempty,min=8,max=72"`
	Role     string  `json:"role" binding:"omitempty,oneof=user admin"`
}

// AdminUpdateUserRequest updates selected fields of a user.
type AdminUpdateUserRequest struct {
	FullName *string `json:"fullName" binding:"omitempty,min=2,max=100"`
	Email    *string `json:"email" binding:"omitempty,email"`
	Role     *string `json:"role" binding:"omitempty,oneof=user admin"`
	Password *string `json:"password" binding:"omitempty,min=8,max=72"`
}

// ListActivitiesParams defines query parameters for the audit log listing.
type ListActivitiesParams struct {
	Page  int `form:"page,default=1"`
	Limit int `form:"limit,default=100"`
}

// ActivityResponse is the outward-facing shape of one audit entry.
type ActivityResponse struct {
	ActivityID string         `json:"activityID"`
	UserID     *string        `json:"userID,omitempty"`
	Action     string         `json:"action"`
	IPAddress  string         `json:"ipAddress,omitempty"`
	Device     string         `json:"device,omitempty"`
	Metadata   map[string]any `json:"metadata,omitempty"`
	CreatedAt  time.Time      `json:"createdAt"`
}

// ToActivityResponse converts a domain.Activity to an ActivityResponse DTO.
func ToActivityResponse(a domain.Activity) ActivityResponse {
	return ActivityResponse{
		ActivityID: a.ActivityID,
		UserID:     a.UserID,
		Action:     string(a.Action),
		IPAddress:  a.IPAddress,
		Device:     a.Device,
		Metadata:   a.Metadata,
		CreatedAt:  a.CreatedAt,
	}
}

// ListActivitiesResponse wraps a page of audit entries.
type ListActivitiesResponse struct {
	Activities []ActivityResponse `json:"activities"`
	Pagination Pagination         `json:"pagination"`
}
