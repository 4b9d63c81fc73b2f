package access

import (
	"errors"
	"fmt"

	"github.com/farmsaathi/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// ErrInvalidPrincipal is returned when a principal cannot be built from credentials
var ErrInvalidPrincipal = shared.NewDomainError("UNAUTHORIZED", "Invalid principal")

// UserMessage is the only message shown to callers for both missing and
// forbidden records, so that record existence cannot be probed.
const UserMessage = "Record not found or access denied."

// Reason tells a missing record apart from a forbidden one. It is only
// used for server-side logging.
type Reason string

const (
	ReasonNotFound     Reason = "not_found"
	ReasonAccessDenied Reason = "access_denied"
)

// AccessError is returned when a principal may not touch a record
type AccessError struct {
	Reason Reason
	// Owner of the record when it exists
	Owner uuid.UUID
	// PrincipalID is the requester
	PrincipalID uuid.UUID
}

// Error returns the uniform user-facing message
func (e *AccessError) Error() string {
	return UserMessage
}

// Detail describes the failure for logs
func (e *AccessError) Detail() string {
	if e.Reason == ReasonNotFound {
		return "record does not exist"
	}
	return fmt.Sprintf("principal %s is not the owner %s", e.PrincipalID, e.Owner)
}

// IsAccessError reports whether err is (or wraps) an AccessError
func IsAccessError(err error) bool {
	var ae *AccessError
	return errors.As(err, &ae)
}

// Predicate restricts a listing to the rows a principal may see.
// The zero value matches nothing.
type Predicate struct {
	All     bool
	OwnerID uuid.UUID
}

// Matches evaluates the predicate against a record owner
func (p Predicate) Matches(owner uuid.UUID) bool {
	if p.All {
		return true
	}
	return p.OwnerID != uuid.Nil && owner == p.OwnerID
}

// VisibilityPredicate returns the row filter for a principal: admins see every
// row, managers only the rows they created.
func VisibilityPredicate(p Principal) Predicate {
	if p.IsAdmin() {
		return Predicate{All: true}
	}
	return Predicate{OwnerID: p.ID}
}

// OwnedBy returns a predicate restricted to one owner regardless of role.
func OwnedBy(owner uuid.UUID) Predicate {
	return Predicate{OwnerID: owner}
}

// AuthorizeRecordAccess checks whether p may read or mutate a record owned by owner.
// exists must be false when the lookup found no record.
func AuthorizeRecordAccess(p Principal, owner uuid.UUID, exists bool) error {
	if !exists {
		return &AccessError{Reason: ReasonNotFound, PrincipalID: p.ID}
	}
	if VisibilityPredicate(p).Matches(owner) {
		return nil
	}
	return &AccessError{Reason: ReasonAccessDenied, Owner: owner, PrincipalID: p.ID}
}

// OwnerForNewRecord attributes a new record to its creator, whatever the role.
func OwnerForNewRecord(p Principal) uuid.UUID {
	return p.ID
}

// RequireAdmin guards admin-only operations
func RequireAdmin(p Principal) error {
	if !p.IsAdmin() {
		return shared.ErrForbidden
	}
	return nil
}
