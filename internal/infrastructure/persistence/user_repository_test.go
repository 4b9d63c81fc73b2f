package persistence

import (
	"context"
	"testing"

	"github.com/farmsaathi/backend/internal/domain/access"
	"github.com/farmsaathi/backend/internal/domain/identity"
	"github.com/farmsaathi/backend/internal/domain/shared"
	"github.com/farmsaathi/backend/tests/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func init() {
	identity.SetBcryptCost(bcrypt.MinCost)
}

func seedUser(t *testing.T, repo *GormUserRepository, username string, role access.Role, email string) *identity.User {
	t.Helper()
	u, err := identity.NewUser(username, "secret123", role)
	require.NoError(t, err)
	require.NoError(t, u.SetEmail(email))
	require.NoError(t, repo.Create(context.Background(), u))
	return u
}

func TestGormUserRepository(t *testing.T) {
	db := testutil.NewSQLiteDB(t, Models()...)
	repo := NewGormUserRepository(db)
	ctx := context.Background()

	admin := seedUser(t, repo, "root", access.RoleAdmin, "root@farm.example")
	asha := seedUser(t, repo, "asha", access.RoleManager, "asha@farm.example")
	seedUser(t, repo, "ravi", access.RoleManager, "ravi@mill.example")

	t.Run("find by username is case-insensitive", func(t *testing.T) {
		u, err := repo.FindByUsername(ctx, "  ASHA ")
		require.NoError(t, err)
		assert.Equal(t, asha.ID, u.ID)

		_, err = repo.FindByUsername(ctx, "nobody")
		assert.ErrorIs(t, err, shared.ErrNotFound)

		exists, err := repo.ExistsByUsername(ctx, "Root")
		require.NoError(t, err)
		assert.True(t, exists)
	})

	t.Run("filter by keyword and role", func(t *testing.T) {
		role := access.RoleManager
		users, total, err := repo.FindAll(ctx, identity.UserFilter{Keyword: "farm.example", Role: &role, Page: 1, PageSize: 10})
		require.NoError(t, err)
		assert.EqualValues(t, 1, total)
		require.Len(t, users, 1)
		assert.Equal(t, "asha", users[0].Username)
	})

	t.Run("unknown sort field falls back", func(t *testing.T) {
		users, total, err := repo.FindAll(ctx, identity.UserFilter{SortBy: "password_hash", SortOrder: "asc"})
		require.NoError(t, err)
		assert.EqualValues(t, 3, total)
		assert.Equal(t, admin.ID, users[0].ID)
	})

	t.Run("counts and recent", func(t *testing.T) {
		byRole, err := repo.CountByRole(ctx)
		require.NoError(t, err)
		assert.EqualValues(t, 1, byRole[access.RoleAdmin])
		assert.EqualValues(t, 2, byRole[access.RoleManager])

		recent, err := repo.FindRecent(ctx, 2)
		require.NoError(t, err)
		assert.Len(t, recent, 2)

		count, err := repo.Count(ctx)
		require.NoError(t, err)
		assert.EqualValues(t, 3, count)
	})

	t.Run("update persists role and status", func(t *testing.T) {
		require.NoError(t, asha.SetRole(access.RoleAdmin))
		require.NoError(t, asha.SetStatus(identity.UserStatusInactive))
		require.NoError(t, repo.Update(ctx, asha))

		u, err := repo.FindByID(ctx, asha.ID)
		require.NoError(t, err)
		assert.Equal(t, access.RoleAdmin, u.Role)
		assert.False(t, u.CanLogin())
	})
}
