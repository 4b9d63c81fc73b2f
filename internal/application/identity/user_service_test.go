package identity_test

import (
	"context"
	"testing"
	"time"

	appidentity "github.com/farmsaathi/backend/internal/application/identity"
	"github.com/farmsaathi/backend/internal/domain/access"
	"github.com/farmsaathi/backend/internal/domain/identity"
	"github.com/farmsaathi/backend/internal/domain/shared"
	"github.com/farmsaathi/backend/internal/infrastructure/auth"
	"github.com/farmsaathi/backend/tests/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type stubCounter map[uuid.UUID]int64

func (c stubCounter) Count(_ context.Context, pred access.Predicate, _ map[string]interface{}) (int64, error) {
	return c[pred.OwnerID], nil
}

func TestUserService_AdminOnly(t *testing.T) {
	repo := new(MockUserRepository)
	svc := appidentity.NewUserService(repo, nil, time.Hour, nil, nil)
	manager := testutil.Manager(t, "asha")
	ctx := context.Background()

	_, err := svc.List(ctx, manager, appidentity.UserListQuery{})
	assert.ErrorIs(t, err, shared.ErrForbidden)
	_, err = svc.Create(ctx, manager, appidentity.CreateUserRequest{Username: "x", Password: "y", Role: "admin"})
	assert.ErrorIs(t, err, shared.ErrForbidden)
	_, err = svc.Statistics(ctx, manager, uuid.New())
	assert.ErrorIs(t, err, shared.ErrForbidden)
	repo.AssertExpectations(t)
}

func TestUserService_Create(t *testing.T) {
	ctx := context.Background()
	repo := new(MockUserRepository)
	svc := appidentity.NewUserService(repo, nil, time.Hour, nil, nil)
	admin := testutil.Admin(t)

	repo.On("ExistsByUsername", ctx, "ravi").Return(false, nil)
	repo.On("ExistsByUsername", ctx, "asha").Return(true, nil)
	repo.On("Create", ctx, mock.MatchedBy(func(u *identity.User) bool {
		return u.Username == "ravi" && u.Role == access.RoleManager && u.VerifyPassword("tractor99")
	})).Return(nil)

	created, err := svc.Create(ctx, admin, appidentity.CreateUserRequest{
		Username: "ravi", Password: "tractor99", Email: "Ravi@Example.com", Role: "manager",
	})
	require.NoError(t, err)
	assert.Equal(t, "ravi@example.com", created.Email)

	_, err = svc.Create(ctx, admin, appidentity.CreateUserRequest{Username: "asha", Password: "tractor99", Role: "manager"})
	var de *shared.DomainError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, "USERNAME_EXISTS", de.Code)
	repo.AssertExpectations(t)
}

func TestUserService_RoleChangeRevokesTokens(t *testing.T) {
	ctx := context.Background()
	repo := new(MockUserRepository)
	blacklist := auth.NewInMemoryTokenBlacklist()
	svc := appidentity.NewUserService(repo, blacklist, time.Hour, nil, nil)
	admin := testutil.Admin(t)

	user := newUser(t, "asha", access.RoleManager)
	issuedAt := time.Now().Add(-time.Minute)
	repo.On("FindByID", ctx, user.ID).Return(user, nil)
	repo.On("Update", ctx, user).Return(nil)

	name := "Asha Rao"
	updated, err := svc.Update(ctx, admin, user.ID, appidentity.UpdateUserRequest{FullName: &name})
	require.NoError(t, err)
	assert.Equal(t, "Asha Rao", updated.FullName)
	revoked, err := blacklist.IsUserTokenInvalidated(ctx, user.ID.String(), issuedAt)
	require.NoError(t, err)
	assert.False(t, revoked, "profile edits keep sessions")

	updated, err = svc.Update(ctx, admin, user.ID, appidentity.UpdateUserRequest{Role: "admin"})
	require.NoError(t, err)
	assert.Equal(t, "admin", updated.Role)
	revoked, err = blacklist.IsUserTokenInvalidated(ctx, user.ID.String(), issuedAt)
	require.NoError(t, err)
	assert.True(t, revoked)
}

func TestUserService_AdminCannotDemoteSelf(t *testing.T) {
	ctx := context.Background()
	repo := new(MockUserRepository)
	svc := appidentity.NewUserService(repo, nil, time.Hour, nil, nil)

	self := newUser(t, "root", access.RoleAdmin)
	repo.On("FindByID", ctx, self.ID).Return(self, nil)

	_, err := svc.Update(ctx, self.Principal(), self.ID, appidentity.UpdateUserRequest{Status: "inactive"})
	assert.ErrorIs(t, err, shared.ErrInvalidState)
	repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestUserService_Statistics(t *testing.T) {
	ctx := context.Background()
	repo := new(MockUserRepository)
	svc := appidentity.NewUserService(repo, nil, time.Hour, nil, nil)
	user := newUser(t, "asha", access.RoleManager)
	repo.On("FindByID", ctx, user.ID).Return(user, nil)

	svc.SetRecordCounter("crops", stubCounter{user.ID: 3})
	svc.SetRecordCounter("livestock", stubCounter{user.ID: 2, uuid.New(): 9})

	stats, err := svc.Statistics(ctx, testutil.Admin(t), user.ID)
	require.NoError(t, err)
	assert.Equal(t, map[string]int64{"crops": 3, "livestock": 2}, stats.Records)
	assert.Equal(t, int64(5), stats.Total)
}

func TestUserService_EnsureAdmin(t *testing.T) {
	ctx := context.Background()

	t.Run("creates the first admin", func(t *testing.T) {
		repo := new(MockUserRepository)
		svc := appidentity.NewUserService(repo, nil, time.Hour, nil, nil)
		repo.On("Count", ctx).Return(int64(0), nil)
		repo.On("Create", ctx, mock.MatchedBy(func(u *identity.User) bool { return u.Role == access.RoleAdmin })).Return(nil)

		created, err := svc.EnsureAdmin(ctx, "admin", "changeme123", "")
		require.NoError(t, err)
		assert.True(t, created)
		repo.AssertExpectations(t)
	})

	t.Run("does nothing once users exist", func(t *testing.T) {
		repo := new(MockUserRepository)
		svc := appidentity.NewUserService(repo, nil, time.Hour, nil, nil)
		repo.On("Count", ctx).Return(int64(4), nil)

		created, err := svc.EnsureAdmin(ctx, "admin", "changeme123", "")
		require.NoError(t, err)
		assert.False(t, created)
		repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})
}
