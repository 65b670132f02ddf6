package access

import (
	"errors"
	"testing"

	"github.com/aquaportal/backend/internal/domain/identity"
	"github.com/aquaportal/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func customer() identity.Principal {
	return identity.Principal{AccountID: uuid.New(), ProfileID: uuid.New(), Role: identity.RoleCustomer}
}

func admin() identity.Principal {
	return identity.Principal{AccountID: uuid.New(), ProfileID: uuid.New(), Role: identity.RoleAdmin}
}

func TestPolicy_Authorize(t *testing.T) {
	p := NewPolicy()

	tests := []struct {
		name      string
		principal identity.Principal
		action    Action
		wantCode  string
	}{
		{"customer reads bills", customer(), ActionBillRead, ""},
		{"customer cannot create bills", customer(), ActionBillCreate, shared.CodeForbidden},
		{"admin creates bills", admin(), ActionBillCreate, ""},
		{"customer records payment", customer(), ActionPaymentRecord, ""},
		{"admin records payment", admin(), ActionPaymentRecord, ""},
		{"customer cannot review payment", customer(), ActionPaymentReview, shared.CodeForbidden},
		{"customer files complaint", customer(), ActionComplaintFile, ""},
		{"admin does not file complaints", admin(), ActionComplaintFile, shared.CodeForbidden},
		{"customer cannot respond", customer(), ActionComplaintRespond, shared.CodeForbidden},
		{"admin responds", admin(), ActionComplaintRespond, ""},
		{"anonymous is unauthorized", identity.Principal{}, ActionBillRead, shared.CodeUnauthorized},
		{"unknown action is forbidden", admin(), Action("bill:delete"), shared.CodeForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := p.Authorize(tt.principal, tt.action)
			if tt.wantCode == "" {
				assert.NoError(t, err)
				return
			}
			var de *shared.DomainError
			require.True(t, errors.As(err, &de))
			assert.Equal(t, tt.wantCode, de.Code)
		})
	}
}

func TestPolicy_ScopeFor(t *testing.T) {
	p := NewPolicy()

	c := customer()
	s := p.ScopeFor(c)
	assert.Equal(t, ScopeSelf, s.Type)
	require.NotNil(t, s.CustomerFilter())
	assert.Equal(t, c.ProfileID, *s.CustomerFilter())

	other := uuid.New()
	assert.Equal(t, c.ProfileID, *s.Narrow(&other), "self scope cannot be moved")

	a := p.ScopeFor(admin())
	assert.Equal(t, ScopeAll, a.Type)
	assert.Nil(t, a.CustomerFilter())
	assert.Equal(t, other, *a.Narrow(&other))
	assert.Nil(t, a.Narrow(nil))
}

func TestPolicy_CheckOwnership(t *testing.T) {
	p := NewPolicy()
	c := customer()

	assert.NoError(t, p.CheckOwnership(c, c.ProfileID))
	assert.ErrorIs(t, p.CheckOwnership(c, uuid.New()), shared.ErrNotFound)
	assert.NoError(t, p.CheckOwnership(admin(), uuid.New()))
	assert.ErrorIs(t, p.CheckOwnership(identity.Principal{}, uuid.New()), shared.ErrUnauthorized)

	assert.ErrorIs(t, p.AuthorizeOwned(c, ActionComplaintRespond, c.ProfileID), shared.ErrForbidden)
}
