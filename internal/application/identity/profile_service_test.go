package identity

import (
	"context"
	"testing"

	"github.com/aquaportal/backend/internal/domain/access"
	"github.com/aquaportal/backend/internal/domain/identity"
	"github.com/aquaportal/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newProfileService() (*ProfileService, *MockAccountRepository, *MockProfileRepository, *MockEventPublisher) {
	accounts := new(MockAccountRepository)
	profiles := new(MockProfileRepository)
	publisher := new(MockEventPublisher)
	return NewProfileService(accounts, profiles, access.NewPolicy(), publisher), accounts, profiles, publisher
}

func principalFor(p *identity.Profile) identity.Principal {
	return identity.Principal{AccountID: p.UserID, ProfileID: p.ID, Role: p.Role(), TokenID: "jti"}
}

func strPtr(s string) *string { return &s }

func TestProfileService_GetMyProfile(t *testing.T) {
	svc, accounts, profiles, _ := newProfileService()
	account, profile := existingUser(t, "jane@example.com", "password123", false)
	profiles.On("FindByID", mock.Anything, profile.ID).Return(profile, nil)
	accounts.On("FindByID", mock.Anything, account.ID).Return(account, nil)

	resp, err := svc.GetMyProfile(context.Background(), principalFor(profile))
	require.NoError(t, err)
	assert.Equal(t, profile.ID, resp.ID)
	assert.Equal(t, "jane@example.com", resp.Email)

	_, err = svc.GetMyProfile(context.Background(), identity.Principal{})
	assert.ErrorIs(t, err, shared.ErrUnauthorized)
}

func TestProfileService_UpdateMyProfile_ContactOnly(t *testing.T) {
	svc, _, profiles, publisher := newProfileService()
	_, profile := existingUser(t, "jane@example.com", "password123", false)
	profiles.On("FindByID", mock.Anything, profile.ID).Return(profile, nil)
	profiles.On("Update", mock.Anything, profile).Return(nil)
	publisher.On("Publish", mock.Anything, mock.Anything).Return(nil)

	resp, err := svc.UpdateMyProfile(context.Background(), principalFor(profile), UpdateMyProfileInput{
		Phone:   strPtr("0711111111"),
		Address: strPtr("Nakuru"),
	})
	require.NoError(t, err)
	assert.Equal(t, "0711111111", resp.Phone)
	assert.Equal(t, "Nakuru", resp.Address)
	assert.False(t, resp.IsAdmin)
	assert.Nil(t, resp.MeterNumber)
	assert.Equal(t, 2, profile.Version)
}

func TestProfileService_ListCustomers(t *testing.T) {
	svc, _, profiles, _ := newProfileService()
	_, admin := existingUser(t, "admin@example.com", "password123", true)
	_, c1 := existingUser(t, "a@example.com", "password123", false)
	_, c2 := existingUser(t, "b@example.com", "password123", false)

	opts := shared.ListOptions{Page: 1, PageSize: 20}
	profiles.On("ListCustomers", mock.Anything, opts).Return([]*identity.Profile{c2, c1}, int64(2), nil)

	result, err := svc.ListCustomers(context.Background(), principalFor(admin), shared.ListOptions{})
	require.NoError(t, err)
	assert.Equal(t, int64(2), result.Total)
	require.Len(t, result.Items, 2)
	assert.Equal(t, c2.ID, result.Items[0].ID)

	_, err = svc.ListCustomers(context.Background(), principalFor(c1), opts)
	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, shared.CodeForbidden, domainErr.Code)
}

func TestProfileService_AdminUpdateProfile(t *testing.T) {
	ctx := context.Background()
	_, admin := existingUser(t, "admin@example.com", "password123", true)

	t.Run("assigns meter and promotes", func(t *testing.T) {
		svc, _, profiles, publisher := newProfileService()
		_, customer := existingUser(t, "jane@example.com", "password123", false)
		profiles.On("FindByID", mock.Anything, customer.ID).Return(customer, nil)
		profiles.On("ExistsByMeterNumber", mock.Anything, "MTR-100", customer.ID).Return(false, nil)
		profiles.On("Update", mock.Anything, customer).Return(nil)
		publisher.On("Publish", mock.Anything, mock.Anything).Return(nil)

		isAdmin := true
		resp, err := svc.AdminUpdateProfile(ctx, principalFor(admin), customer.ID, AdminUpdateProfileInput{
			MeterNumber: strPtr(" MTR-100 "),
			IsAdmin:     &isAdmin,
		})
		require.NoError(t, err)
		assert.Equal(t, "MTR-100", *resp.MeterNumber)
		assert.Equal(t, identity.RoleAdmin, resp.Role)
	})

	t.Run("meter number already assigned", func(t *testing.T) {
		svc, _, profiles, _ := newProfileService()
		_, customer := existingUser(t, "jane@example.com", "password123", false)
		profiles.On("FindByID", mock.Anything, customer.ID).Return(customer, nil)
		profiles.On("ExistsByMeterNumber", mock.Anything, "MTR-100", customer.ID).Return(true, nil)

		_, err := svc.AdminUpdateProfile(ctx, principalFor(admin), customer.ID, AdminUpdateProfileInput{MeterNumber: strPtr("MTR-100")})
		assert.ErrorIs(t, err, shared.ErrAlreadyExists)
		profiles.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})

	t.Run("customer cannot use it", func(t *testing.T) {
		svc, _, profiles, _ := newProfileService()
		_, customer := existingUser(t, "jane@example.com", "password123", false)

		_, err := svc.AdminUpdateProfile(ctx, principalFor(customer), customer.ID, AdminUpdateProfileInput{MeterNumber: strPtr("MTR-1")})
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, shared.CodeForbidden, domainErr.Code)
		profiles.AssertNotCalled(t, "FindByID", mock.Anything, mock.Anything)
	})

	t.Run("empty input", func(t *testing.T) {
		svc, _, _, _ := newProfileService()
		_, err := svc.AdminUpdateProfile(ctx, principalFor(admin), uuid.New(), AdminUpdateProfileInput{})
		assert.ErrorIs(t, err, shared.ErrInvalidInput)
	})
}
