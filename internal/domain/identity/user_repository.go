package identity

import (
	"context"

	"github.com/farmsaathi/backend/internal/domain/access"
	"github.com/google/uuid"
)

// UserRepository defines the interface for user persistence
type UserRepository interface {
	Create(ctx context.Context, user *User) error
	Update(ctx context.Context, user *User) error
	FindByID(ctx context.Context, id uuid.UUID) (*User, error)
	FindByUsername(ctx context.Context, username string) (*User, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)

	// FindAll returns one page of users and the total count
	FindAll(ctx context.Context, filter UserFilter) ([]User, int64, error)

	// CountByRole returns the number of users per role
	CountByRole(ctx context.Context) (map[access.Role]int64, error)

	// FindRecent returns the most recently created users
	FindRecent(ctx context.Context, limit int) ([]User, error)

	Count(ctx context.Context) (int64, error)
}

// UserFilter contains filter options for querying users
type UserFilter struct {
	// Search keyword for username, email, or full name
	Keyword string
	Role    *access.Role
	Status  *UserStatus

	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}

// NewUserFilter creates a new UserFilter with default values
func NewUserFilter() UserFilter {
	return UserFilter{
		Page:      1,
		PageSize:  20,
		SortBy:    "created_at",
		SortOrder: "desc",
	}
}

// Offset returns the offset for pagination
func (f UserFilter) Offset() int {
	if f.Page <= 0 {
		return 0
	}
	return (f.Page - 1) * f.PageSize
}
