package identity

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/farmsaathi/backend/internal/application/activity"
	"github.com/farmsaathi/backend/internal/domain/access"
	domainactivity "github.com/farmsaathi/backend/internal/domain/activity"
	"github.com/farmsaathi/backend/internal/domain/identity"
	"github.com/farmsaathi/backend/internal/domain/shared"
	"github.com/farmsaathi/backend/internal/infrastructure/auth"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ModuleUsers names the user administration module
const ModuleUsers = "users"

// ErrSelfDemotion stops an admin from locking themselves out
var ErrSelfDemotion = shared.NewDomainError("INVALID_STATE", "You cannot change your own role or status")

// OwnedCounter counts the records of one module that a predicate allows
type OwnedCounter interface {
	Count(ctx context.Context, pred access.Predicate, filters map[string]interface{}) (int64, error)
}

// UserService handles user management operations. Every method is admin only.
type UserService struct {
	userRepo  identity.UserRepository
	blacklist auth.TokenBlacklist
	tokenTTL  time.Duration
	counters  map[string]OwnedCounter
	recorder  activity.Recorder
	logger    *zap.Logger
}

// NewUserService creates a new user service. tokenTTL is the longest token
// lifetime; revoking a user's tokens lasts that long.
func NewUserService(
	userRepo identity.UserRepository,
	blacklist auth.TokenBlacklist,
	tokenTTL time.Duration,
	recorder activity.Recorder,
	logger *zap.Logger,
) *UserService {
	if recorder == nil {
		recorder = activity.Nop{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UserService{
		userRepo:  userRepo,
		blacklist: blacklist,
		tokenTTL:  tokenTTL,
		counters:  make(map[string]OwnedCounter),
		recorder:  recorder,
		logger:    logger,
	}
}

// SetRecordCounter registers the counter used for module in user statistics
func (s *UserService) SetRecordCounter(module string, counter OwnedCounter) {
	s.counters[module] = counter
}

// List returns one page of users
func (s *UserService) List(ctx context.Context, p access.Principal, q UserListQuery) (shared.Paginated[UserResponse], error) {
	if err := access.RequireAdmin(p); err != nil {
		return shared.Paginated[UserResponse]{}, err
	}

	paging := shared.Filter{Page: q.Page, PageSize: q.PageSize}.Normalize(20, 100)
	filter := identity.NewUserFilter()
	filter.Keyword = strings.TrimSpace(q.Search)
	filter.Page, filter.PageSize = paging.Page, paging.PageSize
	if q.OrderBy != "" {
		filter.SortBy = q.OrderBy
	}
	if q.OrderDir != "" {
		filter.SortOrder = q.OrderDir
	}
	if q.Role != "" {
		role := access.Role(q.Role)
		filter.Role = &role
	}
	if q.Status != "" {
		status := identity.UserStatus(q.Status)
		filter.Status = &status
	}

	users, total, err := s.userRepo.FindAll(ctx, filter)
	if err != nil {
		return shared.Paginated[UserResponse]{}, err
	}
	return shared.MapPaginated(shared.NewPaginated(users, total, filter.Page, filter.PageSize), ToUserResponse), nil
}

// Get returns one user
func (s *UserService) Get(ctx context.Context, p access.Principal, id uuid.UUID) (*UserResponse, error) {
	if err := access.RequireAdmin(p); err != nil {
		return nil, err
	}
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToUserResponse(*user)
	return &resp, nil
}

// Create adds a user
func (s *UserService) Create(ctx context.Context, p access.Principal, req CreateUserRequest) (*UserResponse, error) {
	if err := access.RequireAdmin(p); err != nil {
		return nil, err
	}

	exists, err := s.userRepo.ExistsByUsername(ctx, req.Username)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.NewDomainError("USERNAME_EXISTS", "Username already exists")
	}

	user, err := identity.NewUser(req.Username, req.Password, access.Role(req.Role))
	if err != nil {
		return nil, err
	}
	if err := user.SetEmail(req.Email); err != nil {
		return nil, err
	}
	if err := user.SetFullName(req.FullName); err != nil {
		return nil, err
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.recorder.Record(ctx, p, domainactivity.ActionCreate, ModuleUsers,
		fmt.Sprintf("Created %s user %s", user.Role, user.Username))
	resp := ToUserResponse(*user)
	return &resp, nil
}

// Update changes a user's profile, role, status or password. Changing the
// role, status or password revokes every token the user holds.
func (s *UserService) Update(ctx context.Context, p access.Principal, id uuid.UUID, req UpdateUserRequest) (*UserResponse, error) {
	if err := access.RequireAdmin(p); err != nil {
		return nil, err
	}
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	role := access.Role(req.Role)
	status := identity.UserStatus(req.Status)
	roleChanged := req.Role != "" && role != user.Role
	statusChanged := req.Status != "" && status != user.Status
	if user.ID == p.ID && (roleChanged || statusChanged) {
		return nil, ErrSelfDemotion
	}

	if req.Email != nil {
		if err := user.SetEmail(*req.Email); err != nil {
			return nil, err
		}
	}
	if req.FullName != nil {
		if err := user.SetFullName(*req.FullName); err != nil {
			return nil, err
		}
	}
	if roleChanged {
		if err := user.SetRole(role); err != nil {
			return nil, err
		}
	}
	if statusChanged {
		if err := user.SetStatus(status); err != nil {
			return nil, err
		}
	}
	if req.Password != "" {
		if err := user.SetPassword(req.Password); err != nil {
			return nil, err
		}
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	if roleChanged || statusChanged || req.Password != "" {
		s.revokeAll(ctx, user.ID)
	}
	s.recorder.Record(ctx, p, domainactivity.ActionUpdate, ModuleUsers, "Updated user "+user.Username)
	resp := ToUserResponse(*user)
	return &resp, nil
}

func (s *UserService) revokeAll(ctx context.Context, userID uuid.UUID) {
	if s.blacklist == nil {
		return
	}
	if err := s.blacklist.AddUserTokensToBlacklist(ctx, userID.String(), s.tokenTTL); err != nil {
		s.logger.Error("Failed to revoke user tokens", zap.String("user_id", userID.String()), zap.Error(err))
	}
}

// Statistics counts the records a user owns in every registered module
func (s *UserService) Statistics(ctx context.Context, p access.Principal, id uuid.UUID) (*UserStatistics, error) {
	if err := access.RequireAdmin(p); err != nil {
		return nil, err
	}
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	stats := &UserStatistics{User: ToUserResponse(*user), Records: make(map[string]int64, len(s.counters))}
	pred := access.OwnedBy(user.ID)
	for module, counter := range s.counters {
		n, err := counter.Count(ctx, pred, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to count %s records: %w", module, err)
		}
		stats.Records[module] = n
		stats.Total += n
	}
	return stats, nil
}

// EnsureAdmin creates the first admin account when no user exists yet.
// It reports whether an account was created.
func (s *UserService) EnsureAdmin(ctx context.Context, username, password, email string) (bool, error) {
	count, err := s.userRepo.Count(ctx)
	if err != nil {
		return false, err
	}
	if count > 0 {
		return false, nil
	}

	user, err := identity.NewUser(username, password, access.RoleAdmin)
	if err != nil {
		return false, err
	}
	if err := user.SetEmail(email); err != nil {
		return false, err
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return false, fmt.Errorf("failed to create admin user: %w", err)
	}
	s.logger.Info("Created bootstrap admin", zap.String("username", user.Username))
	return true, nil
}
