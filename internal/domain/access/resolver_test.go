package access

import (
	"errors"
	"testing"

	"github.com/farmsaathi/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustPrincipal(t *testing.T, role Role) Principal {
	t.Helper()
	p, err := NewPrincipal(uuid.New(), string(role)+"-user", role)
	require.NoError(t, err)
	return p
}

func TestNewPrincipal(t *testing.T) {
	t.Run("valid admin", func(t *testing.T) {
		p, err := NewPrincipal(uuid.New(), "root", RoleAdmin)
		require.NoError(t, err)
		assert.True(t, p.IsAdmin())
	})

	t.Run("nil id rejected", func(t *testing.T) {
		_, err := NewPrincipal(uuid.Nil, "x", RoleManager)
		assert.ErrorIs(t, err, ErrInvalidPrincipal)
	})

	t.Run("unknown role rejected", func(t *testing.T) {
		_, err := NewPrincipal(uuid.New(), "x", Role("superuser"))
		assert.ErrorIs(t, err, ErrInvalidPrincipal)
	})
}

func TestVisibilityPredicate(t *testing.T) {
	admin := mustPrincipal(t, RoleAdmin)
	manager := mustPrincipal(t, RoleManager)
	other := uuid.New()

	adminPred := VisibilityPredicate(admin)
	assert.True(t, adminPred.All)
	assert.True(t, adminPred.Matches(other))
	assert.True(t, adminPred.Matches(admin.ID))

	managerPred := VisibilityPredicate(manager)
	assert.False(t, managerPred.All)
	assert.Equal(t, manager.ID, managerPred.OwnerID)
	assert.True(t, managerPred.Matches(manager.ID))
	assert.False(t, managerPred.Matches(other))
}

func TestPredicate_ZeroValueMatchesNothing(t *testing.T) {
	var p Predicate
	assert.False(t, p.Matches(uuid.New()))
	assert.False(t, p.Matches(uuid.Nil))
}

func TestAuthorizeRecordAccess(t *testing.T) {
	admin := mustPrincipal(t, RoleAdmin)
	managerA := mustPrincipal(t, RoleManager)
	managerB := mustPrincipal(t, RoleManager)

	tests := []struct {
		name       string
		principal  Principal
		owner      uuid.UUID
		exists     bool
		wantReason Reason
	}{
		{"owner manager allowed", managerA, managerA.ID, true, ""},
		{"other manager denied", managerB, managerA.ID, true, ReasonAccessDenied},
		{"admin allowed on any record", admin, managerA.ID, true, ""},
		{"admin allowed on own record", admin, admin.ID, true, ""},
		{"missing record for manager", managerA, uuid.Nil, false, ReasonNotFound},
		{"missing record for admin", admin, uuid.Nil, false, ReasonNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := AuthorizeRecordAccess(tt.principal, tt.owner, tt.exists)
			if tt.wantReason == "" {
				assert.NoError(t, err)
				return
			}
			var ae *AccessError
			require.True(t, errors.As(err, &ae))
			assert.Equal(t, tt.wantReason, ae.Reason)
			assert.True(t, IsAccessError(err))
		})
	}
}

func TestAccessError_UniformMessage(t *testing.T) {
	manager := mustPrincipal(t, RoleManager)

	notFound := AuthorizeRecordAccess(manager, uuid.Nil, false)
	denied := AuthorizeRecordAccess(manager, uuid.New(), true)

	require.Error(t, notFound)
	require.Error(t, denied)
	assert.Equal(t, notFound.Error(), denied.Error())
	assert.Equal(t, UserMessage, denied.Error())

	var ae *AccessError
	require.True(t, errors.As(denied, &ae))
	assert.Contains(t, ae.Detail(), "not the owner")
}

func TestOwnerForNewRecord(t *testing.T) {
	admin := mustPrincipal(t, RoleAdmin)
	manager := mustPrincipal(t, RoleManager)

	assert.Equal(t, admin.ID, OwnerForNewRecord(admin))
	assert.Equal(t, manager.ID, OwnerForNewRecord(manager))
}

func TestRequireAdmin(t *testing.T) {
	assert.NoError(t, RequireAdmin(mustPrincipal(t, RoleAdmin)))
	assert.ErrorIs(t, RequireAdmin(mustPrincipal(t, RoleManager)), shared.ErrForbidden)
}

// Filtering a fixed set client-side with the predicate must agree with what a
// server-side owner filter returns.
func TestVisibilityPredicate_AgreesWithOwnerFilter(t *testing.T) {
	managerA := mustPrincipal(t, RoleManager)
	managerB := mustPrincipal(t, RoleManager)
	admin := mustPrincipal(t, RoleAdmin)

	owners := []uuid.UUID{managerA.ID, managerB.ID, managerA.ID, admin.ID, managerB.ID}

	countFor := func(p Principal) int {
		n := 0
		pred := VisibilityPredicate(p)
		for _, o := range owners {
			if pred.Matches(o) {
				n++
			}
		}
		return n
	}

	assert.Equal(t, 2, countFor(managerA))
	assert.Equal(t, 2, countFor(managerB))
	assert.Equal(t, len(owners), countFor(admin))
}
