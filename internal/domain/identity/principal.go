package identity

import (
	"time"

	"github.com/google/uuid"
)

// Role distinguishes customers from administrators
type Role string

const (
	RoleCustomer Role = "customer"
	RoleAdmin    Role = "admin"
)

// IsValid checks if the role is a known value
func (r Role) IsValid() bool {
	return r == RoleCustomer || r == RoleAdmin
}

// Principal is the authenticated caller. It is built once per request from
// the access token and handed to every application operation.
type Principal struct {
	AccountID uuid.UUID
	ProfileID uuid.UUID
	Role      Role
	TokenID   string
	ExpiresAt time.Time
}

// IsAdmin reports whether the caller acts as an administrator
func (p Principal) IsAdmin() bool {
	return p.Role == RoleAdmin
}

// IsAnonymous reports whether no identity is attached
func (p Principal) IsAnonymous() bool {
	return p.ProfileID == uuid.Nil
}
