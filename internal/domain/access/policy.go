// Package access decides who may read or write which rows. Every
// application operation passes its caller through a Policy before touching
// a repository; nothing relies on the database to hide rows.
package access

import (
	"fmt"

	"github.com/aquaportal/backend/internal/domain/identity"
	"github.com/aquaportal/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Action names an operation subject to authorization
type Action string

const (
	ActionProfileReadOwn    Action = "profile:read_own"
	ActionProfileUpdateOwn  Action = "profile:update_own"
	ActionCustomerList      Action = "customer:list"
	ActionCustomerUpdate    Action = "customer:update"
	ActionBillRead          Action = "bill:read"
	ActionBillCreate        Action = "bill:create"
	ActionBillRevise        Action = "bill:revise"
	ActionPaymentRecord     Action = "payment:record"
	ActionPaymentRead       Action = "payment:read"
	ActionPaymentReview     Action = "payment:review"
	ActionComplaintFile     Action = "complaint:file"
	ActionComplaintRead     Action = "complaint:read"
	ActionComplaintRespond  Action = "complaint:respond"
	ActionComplaintAttach   Action = "complaint:attach"
	ActionComplaintCount    Action = "complaint:count_pending"
	ActionDashboardAdmin    Action = "dashboard:admin"
	ActionDashboardCustomer Action = "dashboard:customer"
)

var (
	customerOnly = []identity.Role{identity.RoleCustomer}
	adminOnly    = []identity.Role{identity.RoleAdmin}
	anyRole      = []identity.Role{identity.RoleCustomer, identity.RoleAdmin}
)

// defaultRules maps each action to the roles allowed to perform it
var defaultRules = map[Action][]identity.Role{
	ActionProfileReadOwn:    anyRole,
	ActionProfileUpdateOwn:  anyRole,
	ActionCustomerList:      adminOnly,
	ActionCustomerUpdate:    adminOnly,
	ActionBillRead:          anyRole,
	ActionBillCreate:        adminOnly,
	ActionBillRevise:        adminOnly,
	ActionPaymentRecord:     anyRole,
	ActionPaymentRead:       anyRole,
	ActionPaymentReview:     adminOnly,
	ActionComplaintFile:     customerOnly,
	ActionComplaintRead:     anyRole,
	ActionComplaintRespond:  adminOnly,
	ActionComplaintAttach:   customerOnly,
	ActionComplaintCount:    adminOnly,
	ActionDashboardAdmin:    adminOnly,
	ActionDashboardCustomer: customerOnly,
}

// ScopeType is the breadth of rows a caller may see
type ScopeType string

const (
	// ScopeAll sees every customer's rows
	ScopeAll ScopeType = "ALL"
	// ScopeSelf sees only rows whose customer_id is the caller's profile
	ScopeSelf ScopeType = "SELF"
)

// Scope restricts a listing to the rows a caller may see
type Scope struct {
	Type       ScopeType
	CustomerID uuid.UUID
}

// CustomerFilter returns the customer_id to filter on, or nil for ScopeAll
func (s Scope) CustomerFilter() *uuid.UUID {
	if s.Type == ScopeAll {
		return nil
	}
	id := s.CustomerID
	return &id
}

// Narrow combines the scope with a customer the caller asked for. A
// self-scoped caller cannot widen or move its scope.
func (s Scope) Narrow(requested *uuid.UUID) *uuid.UUID {
	if s.Type == ScopeSelf || requested == nil {
		return s.CustomerFilter()
	}
	return requested
}

// Policy is the explicit row and action authorization layer
type Policy struct {
	rules map[Action][]identity.Role
}

// NewPolicy creates a policy with the portal's rule table
func NewPolicy() *Policy {
	return &Policy{rules: defaultRules}
}

// Authorize checks that the caller's role may perform action
func (p *Policy) Authorize(principal identity.Principal, action Action) error {
	if principal.IsAnonymous() {
		return shared.ErrUnauthorized
	}
	roles, ok := p.rules[action]
	if !ok {
		return shared.NewDomainError(shared.CodeForbidden, fmt.Sprintf("Action %s is not permitted", action))
	}
	for _, r := range roles {
		if r == principal.Role {
			return nil
		}
	}
	return shared.NewDomainError(shared.CodeForbidden,
		fmt.Sprintf("Role %s may not perform %s", principal.Role, action))
}

// ScopeFor returns the rows the caller may see
func (p *Policy) ScopeFor(principal identity.Principal) Scope {
	if principal.IsAdmin() {
		return Scope{Type: ScopeAll}
	}
	return Scope{Type: ScopeSelf, CustomerID: principal.ProfileID}
}

// CheckOwnership verifies a single row belongs to the caller's scope.
// Rows outside the scope are reported as not found so their existence is
// not disclosed.
func (p *Policy) CheckOwnership(principal identity.Principal, ownerID uuid.UUID) error {
	if principal.IsAnonymous() {
		return shared.ErrUnauthorized
	}
	if principal.IsAdmin() || principal.ProfileID == ownerID {
		return nil
	}
	return shared.ErrNotFound
}

// AuthorizeOwned combines Authorize and CheckOwnership
func (p *Policy) AuthorizeOwned(principal identity.Principal, action Action, ownerID uuid.UUID) error {
	if err := p.Authorize(principal, action); err != nil {
		return err
	}
	return p.CheckOwnership(principal, ownerID)
}
