package identity

import (
	"time"

	"github.com/farmsaathi/backend/internal/domain/identity"
	"github.com/google/uuid"
)

// LoginInput contains the input for user login
type LoginInput struct {
	Username string `json:"username" binding:"required,max=100"`
	Password string `json:"password" binding:"required,max=72"`
}

// TokenResult is an issued token pair
type TokenResult struct {
	AccessToken           string    `json:"access_token"`
	RefreshToken          string    `json:"refresh_token"`
	AccessTokenExpiresAt  time.Time `json:"access_token_expires_at"`
	RefreshTokenExpiresAt time.Time `json:"refresh_token_expires_at"`
	TokenType             string    `json:"token_type"`
}

// LoginResult contains the result of a successful login
type LoginResult struct {
	TokenResult
	User UserResponse `json:"user"`
}

// RefreshInput contains the input for token refresh
type RefreshInput struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// LogoutInput optionally names the refresh token to revoke with the access token
type LogoutInput struct {
	RefreshToken string `json:"refresh_token"`
}

// UserResponse is a user as returned by the API. The password hash never leaves the service.
type UserResponse struct {
	ID          uuid.UUID  `json:"id"`
	Username    string     `json:"username"`
	Email       string     `json:"email,omitempty"`
	FullName    string     `json:"full_name,omitempty"`
	Role        string     `json:"role"`
	Status      string     `json:"status"`
	LastLoginAt *time.Time `json:"last_login_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

// ToUserResponse converts a domain user
func ToUserResponse(u identity.User) UserResponse {
	return UserResponse{
		ID:          u.ID,
		Username:    u.Username,
		Email:       u.Email,
		FullName:    u.FullName,
		Role:        string(u.Role),
		Status:      string(u.Status),
		LastLoginAt: u.LastLoginAt,
		CreatedAt:   u.CreatedAt,
	}
}

// CreateUserRequest creates a user
type CreateUserRequest struct {
	Username string `json:"username" binding:"required,min=3,max=100"`
	Password string `json:"password" binding:"required,min=8,max=72"`
	Email    string `json:"email" binding:"omitempty,email,max=200"`
	FullName string `json:"full_name" binding:"max=200"`
	Role     string `json:"role" binding:"required,oneof=admin manager"`
}

// UpdateUserRequest changes a user. Empty fields are left as they are.
type UpdateUserRequest struct {
	Email    *string `json:"email" binding:"omitempty,max=200"`
	FullName *string `json:"full_name" binding:"omitempty,max=200"`
	Role     string  `json:"role" binding:"omitempty,oneof=admin manager"`
	Status   string  `json:"status" binding:"omitempty,oneof=active inactive"`
	Password string  `json:"password" binding:"omitempty,min=8,max=72"`
}

// UserListQuery filters the user listing
type UserListQuery struct {
	Search   string `form:"search" binding:"max=100"`
	Role     string `form:"role" binding:"omitempty,oneof=admin manager"`
	Status   string `form:"status" binding:"omitempty,oneof=active inactive"`
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy  string `form:"order_by"`
	OrderDir string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// UserStatistics counts the records a user owns per module
type UserStatistics struct {
	User    UserResponse     `json:"user"`
	Records map[string]int64 `json:"records"`
	Total   int64            `json:"total"`
}
