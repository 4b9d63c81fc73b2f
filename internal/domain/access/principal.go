// Package access decides which owned records an authenticated principal may see
// and mutate. Every list, read, update and delete of an owned table goes through
// it; nothing here performs I/O.
package access

import (
	"github.com/google/uuid"
)

// Role is the coarse role of a principal
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleManager Role = "manager"
)

// IsValid reports whether r is a known role
func (r Role) IsValid() bool {
	return r == RoleAdmin || r == RoleManager
}

// Principal is the authenticated actor of a request.
// It is built once per request from verified credentials and never mutated.
type Principal struct {
	ID       uuid.UUID
	Username string
	Role     Role
}

// NewPrincipal creates a principal. Unknown roles are rejected rather than
// silently degraded to manager.
func NewPrincipal(id uuid.UUID, username string, role Role) (Principal, error) {
	if id == uuid.Nil {
		return Principal{}, ErrInvalidPrincipal
	}
	if !role.IsValid() {
		return Principal{}, ErrInvalidPrincipal
	}
	return Principal{ID: id, Username: username, Role: role}, nil
}

// IsAdmin reports whether the principal has the admin role
func (p Principal) IsAdmin() bool {
	return p.Role == RoleAdmin
}
